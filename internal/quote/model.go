package quote

// Quote is a motivational one-liner shown on the dashboard.
type Quote struct {
	ID       uint64  `gorm:"primaryKey"`
	Text     string  `gorm:"type:text;not null"`
	Author   *string `gorm:"size:255"`
	Language string  `gorm:"size:8;not null;default:'fr'"`
	IsActive bool    `gorm:"not null;default:true"`
}

func (Quote) TableName() string { return "quotes" }
