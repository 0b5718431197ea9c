package category

import (
	"context"

	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

func (s *Service) List(ctx context.Context) ([]Category, error) {
	var rows []Category
	if err := s.DB.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
