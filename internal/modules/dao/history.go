package dao

import (
	"github.com/reusedev/cutout-hub/internal/components/mysql"
	"github.com/reusedev/cutout-hub/internal/modules/model"
)

func CreateProviderInvokeHistory(record *model.ProviderInvokeHistory) error {
	return mysql.DB.Model(&model.ProviderInvokeHistory{}).Create(record).Error
}

func CreateCompressionHistory(record *model.CompressionHistory) error {
	return mysql.DB.Model(&model.CompressionHistory{}).Create(record).Error
}

// RecentProviderInvokeHistory returns the newest records first. An empty provider matches all.
func RecentProviderInvokeHistory(provider string, limit int) ([]model.ProviderInvokeHistory, error) {
	var records []model.ProviderInvokeHistory
	query := mysql.DB.Model(&model.ProviderInvokeHistory{})
	if provider != "" {
		query = query.Where("provider = ?", provider)
	}
	err := query.Order("id desc").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
