package constants

import "time"

const (
	CHANNEL_SIZE = 100 // 通道大小

	MESSAGE_MAX_LENGTH = 1000 // 单条消息最大字符数
	DEFAULT_PAGE_SIZE  = 30   // 消息分页默认大小
	MAX_PAGE_SIZE      = 100  // 消息分页最大大小

	SESSION_TTL    = 5 * time.Minute     // 在线会话 key 有效期
	READ_STATE_TTL = 14 * 24 * time.Hour // 未读计数与最后阅读时间 key 有效期

	BLOCKED_PREVIEW = "차단된 메시지입니다"     // 被拦截消息在会话列表中的占位预览
	IMAGE_PREVIEW   = "사진을 보냈습니다."       // 无附言的图片消息在会话列表中的预览
	LEAVE_MESSAGE   = "%s님이 채팅방을 나갔습니다." // 离开聊天室的系统消息，%s 为昵称快照
)

// Redis key 前缀
const (
	SESSION_KEY_PREFIX      = "session:"
	CURRENT_ROOM_KEY_PREFIX = "currentroom:"
	UNREAD_KEY_PREFIX       = "unread:"
	LAST_READ_KEY_PREFIX    = "lastread:"
)
