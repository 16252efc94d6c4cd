package model

import "gorm.io/gorm"

// Product 商品只读模型，由商品服务维护
type Product struct {
	gorm.Model
	Uuid     string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:商品uuid"`
	SellerId string `gorm:"column:seller_id;index;type:char(20);not null;comment:卖家uuid"`
	Title    string `gorm:"column:title;type:varchar(100);not null;comment:标题"`
	Price    int64  `gorm:"column:price;not null;comment:价格"`
	ImageUrl string `gorm:"column:image_url;type:varchar(255);comment:主图"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "product"
}
