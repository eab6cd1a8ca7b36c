package storage

import "time"

// worldMeta holds the single saved world header (ID is always 1).
type worldMeta struct {
	ID      uint `gorm:"primaryKey"`
	Tick    uint64
	UserID  string
	SavedAt time.Time
}

func (worldMeta) TableName() string { return "world_meta" }

type cityRow struct {
	Name       string `gorm:"primaryKey"`
	Population int
	Growth     uint8
}

func (cityRow) TableName() string { return "cities" }

type entityRow struct {
	ID          string `gorm:"primaryKey"`
	Kind        uint8
	Name        string
	Product     string
	Personality uint8
	City        string `gorm:"index"`
	Located     bool
}

func (entityRow) TableName() string { return "entities" }

type capitalRow struct {
	EntityID string `gorm:"primaryKey"`
	Amount   int64
}

func (capitalRow) TableName() string { return "capital" }

type lineRow struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	City     string `gorm:"index:idx_line_owner"`
	EntityID string `gorm:"index:idx_line_owner"`
	Position int
	Product  string
	Brand    string
	Type     uint8
	Quantity int64
	Bid      int64
}

func (lineRow) TableName() string { return "inventory_lines" }

type summaryRow struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	City      string `gorm:"index:idx_summary_market"`
	Product   string `gorm:"index:idx_summary_market"`
	Position  int
	SupplyQty int64
	DemandQty int64
	Sell      int64
	Buy       int64
}

func (summaryRow) TableName() string { return "market_history" }

type eventRow struct {
	Seq     uint64 `gorm:"primaryKey;autoIncrement:false"`
	Tick    uint64 `gorm:"index"`
	Kind    string
	Payload string
}

func (eventRow) TableName() string { return "events" }
