package model

import "time"

type ProviderInvokeHistory struct {
	Id           int       `json:"id" gorm:"primaryKey"`
	Provider     string    `json:"provider" gorm:"column:provider;type:varchar(30);index"`
	Kind         string    `json:"kind" gorm:"column:kind;type:enum('local', 'remote')"`
	Skipped      bool      `json:"skipped" gorm:"column:skipped;type:tinyint(1)"`
	StatusCode   int       `json:"status_code" gorm:"column:status_code;type:int"`
	ErrorKind    string    `json:"error_kind" gorm:"column:error_kind;type:varchar(30)"`
	ErrorMessage string    `json:"error_message" gorm:"column:error_message;type:varchar(2000)"`
	Cost         float64   `json:"cost" gorm:"column:cost;type:decimal(10,4)"`
	DurationMs   int64     `json:"duration_ms" gorm:"column:duration_ms;type:int"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;type:datetime;not null;default:CURRENT_TIMESTAMP"`
}

func (ProviderInvokeHistory) TableName() string {
	return "provider_invoke_history"
}

type CompressionHistory struct {
	Id               int       `json:"id" gorm:"primaryKey"`
	Method           string    `json:"method" gorm:"column:method;type:varchar(20)"`
	Quality          string    `json:"quality" gorm:"column:quality;type:varchar(20)"`
	InputSize        int       `json:"input_size" gorm:"column:input_size;type:int"`
	OutputSize       int       `json:"output_size" gorm:"column:output_size;type:int"`
	ReductionPercent float64   `json:"reduction_percent" gorm:"column:reduction_percent;type:float"`
	WithinBudget     bool      `json:"within_budget" gorm:"column:within_budget;type:tinyint(1)"`
	CreatedAt        time.Time `json:"created_at" gorm:"column:created_at;type:datetime;not null;default:CURRENT_TIMESTAMP"`
}

func (CompressionHistory) TableName() string {
	return "compression_history"
}
