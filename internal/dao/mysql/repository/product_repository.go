package repository

import (
	"market_chat_server/internal/model"

	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品 Repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// FindByUuid 按 UUID 查找商品
func (r *productRepository) FindByUuid(uuid string) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询商品 uuid=%s", uuid)
	}
	return &product, nil
}
