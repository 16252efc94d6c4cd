// Package product 提供商品目录查询
package product

import (
	"context"

	"market_chat_server/internal/dao/mysql/repository"
	"market_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// Product 聊天室需要的商品信息
type Product struct {
	ProductId string
	SellerId  string
	Title     string
	Price     int64
	ImageUrl  string
}

// Resolver 商品 ID -> 商品信息
type Resolver interface {
	Resolve(ctx context.Context, productId string) (*Product, error)
}

// RepoResolver 从商品表读取
type RepoResolver struct {
	products repository.ProductRepository
}

// NewRepoResolver 创建商品解析器
func NewRepoResolver(products repository.ProductRepository) *RepoResolver {
	return &RepoResolver{products: products}
}

// Resolve 商品不存在返回 CodeNotFound
func (r *RepoResolver) Resolve(_ context.Context, productId string) (*Product, error) {
	p, err := r.products.FindByUuid(productId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Wrapf(err, errorx.CodeNotFound, "商品 %s 不存在", productId)
		}
		zap.L().Error("查询商品失败", zap.String("product_id", productId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return &Product{
		ProductId: p.Uuid,
		SellerId:  p.SellerId,
		Title:     p.Title,
		Price:     p.Price,
		ImageUrl:  p.ImageUrl,
	}, nil
}

var _ Resolver = (*RepoResolver)(nil)
