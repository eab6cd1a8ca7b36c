package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"prohibition/internal/domain"
	"prohibition/internal/event"
	"prohibition/internal/world"
)

const batchSize = 500

// Storage persists the world state and the event log in SQLite.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the database at path. An empty path uses the
// per-user data directory.
func NewStorage(path string) (*Storage, error) {
	if path == "" {
		p, err := getDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
		path = p
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: newGormLogger(os.Stdout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// newGormLogger logs slow queries and errors. A missing row is an expected
// outcome of LoadWorld on a fresh database and is not logged.
func newGormLogger(out io.Writer) logger.Interface {
	return logger.New(log.New(out, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&worldMeta{}, &cityRow{}, &entityRow{}, &capitalRow{}, &lineRow{}, &summaryRow{}, &eventRow{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// getDBPath resolves the database file path based on OS
func getDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "Prohibition", "data", "prohibition.db"), nil
}

// Close releases the underlying connection.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ======================================================================================
// World Operations
// ======================================================================================

// SaveWorld replaces the saved world with st in one transaction.
func (s *Storage) SaveWorld(ctx context.Context, st *world.State) error {
	meta, cities, entities, capital, lines, summaries := toRows(st)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&worldMeta{}, &cityRow{}, &entityRow{}, &capitalRow{}, &lineRow{}, &summaryRow{}} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		if err := tx.Create(&meta).Error; err != nil {
			return fmt.Errorf("save world meta: %w", err)
		}
		if err := createAll(tx, cities); err != nil {
			return fmt.Errorf("save cities: %w", err)
		}
		if err := createAll(tx, entities); err != nil {
			return fmt.Errorf("save entities: %w", err)
		}
		if err := createAll(tx, capital); err != nil {
			return fmt.Errorf("save capital: %w", err)
		}
		if err := createAll(tx, lines); err != nil {
			return fmt.Errorf("save inventories: %w", err)
		}
		if err := createAll(tx, summaries); err != nil {
			return fmt.Errorf("save history: %w", err)
		}
		return nil
	})
}

func createAll[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, batchSize).Error
}

// LoadWorld returns the saved world, or nil when nothing has been saved.
func (s *Storage) LoadWorld(ctx context.Context) (*world.State, error) {
	db := s.db.WithContext(ctx)

	var meta worldMeta
	err := db.First(&meta, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("load world meta: %w", err)
	}

	var (
		cities    []cityRow
		entities  []entityRow
		capital   []capitalRow
		lines     []lineRow
		summaries []summaryRow
	)
	if err := db.Find(&cities).Error; err != nil {
		return nil, fmt.Errorf("load cities: %w", err)
	}
	if err := db.Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("load entities: %w", err)
	}
	if err := db.Find(&capital).Error; err != nil {
		return nil, fmt.Errorf("load capital: %w", err)
	}
	if err := db.Order("city, entity_id, position").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("load inventories: %w", err)
	}
	if err := db.Order("city, product, position").Find(&summaries).Error; err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	return fromRows(meta, cities, entities, capital, lines, summaries)
}

// SavedTick returns the tick of the saved world and whether one exists.
func (s *Storage) SavedTick(ctx context.Context) (uint64, bool, error) {
	var meta worldMeta
	err := s.db.WithContext(ctx).First(&meta, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return meta.Tick, true, nil
}

// ======================================================================================
// Event Operations
// ======================================================================================

// AppendEvents stores entries not yet persisted. Entries at or below the last stored seq are skipped.
func (s *Storage) AppendEvents(ctx context.Context, entries []event.Entry) (int, error) {
	last, err := s.LastEventSeq(ctx)
	if err != nil {
		return 0, err
	}

	rows := make([]eventRow, 0, len(entries))
	for _, e := range entries {
		if e.Seq <= last {
			continue
		}
		payload, err := json.Marshal(e)
		if err != nil {
			return 0, fmt.Errorf("encode event %d: %w", e.Seq, err)
		}
		rows = append(rows, eventRow{Seq: e.Seq, Tick: e.Tick, Kind: string(e.Kind), Payload: string(payload)})
	}
	if err := createAll(s.db.WithContext(ctx), rows); err != nil {
		return 0, fmt.Errorf("save events: %w", err)
	}
	return len(rows), nil
}

// LoadEvents returns every stored entry in sequence order.
func (s *Storage) LoadEvents(ctx context.Context) ([]event.Entry, error) {
	var rows []eventRow
	if err := s.db.WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	out := make([]event.Entry, 0, len(rows))
	for _, r := range rows {
		var e event.Entry
		if err := json.Unmarshal([]byte(r.Payload), &e); err != nil {
			return nil, fmt.Errorf("decode event %d: %w", r.Seq, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// LastEventSeq returns the highest stored sequence, 0 when empty.
func (s *Storage) LastEventSeq(ctx context.Context) (uint64, error) {
	var last uint64
	err := s.db.WithContext(ctx).Model(&eventRow{}).Select("COALESCE(MAX(seq), 0)").Scan(&last).Error
	return last, err
}

// ======================================================================================
// Row mapping
// ======================================================================================

func toRows(st *world.State) (worldMeta, []cityRow, []entityRow, []capitalRow, []lineRow, []summaryRow) {
	meta := worldMeta{ID: 1, Tick: st.Tick, UserID: st.User.String(), SavedAt: time.Now().UTC()}

	cities := make([]cityRow, 0, len(st.Cities))
	for _, c := range st.Cities {
		cities = append(cities, cityRow{Name: string(c.Name), Population: c.Population, Growth: uint8(c.Growth)})
	}

	entities := make([]entityRow, 0, len(st.Entities))
	for id, e := range st.Entities {
		row := entityRow{
			ID:          id.String(),
			Kind:        uint8(e.Kind),
			Name:        e.Name,
			Product:     string(e.Product),
			Personality: uint8(e.Personality),
		}
		if city, ok := st.Locations[id]; ok {
			row.City = string(city)
			row.Located = true
		}
		entities = append(entities, row)
	}

	capital := make([]capitalRow, 0, len(st.Capital))
	for id, m := range st.Capital {
		capital = append(capital, capitalRow{EntityID: id.String(), Amount: int64(m)})
	}

	var lines []lineRow
	for city, byEntity := range st.Inventories {
		for id, ls := range byEntity {
			for i, l := range ls {
				lines = append(lines, lineRow{
					City:     string(city),
					EntityID: id.String(),
					Position: i,
					Product:  string(l.Product),
					Brand:    string(l.Brand),
					Type:     uint8(l.Type),
					Quantity: l.Quantity,
					Bid:      int64(l.Bid),
				})
			}
		}
	}

	var summaries []summaryRow
	for city, byProduct := range st.History {
		for p, h := range byProduct {
			for i, sum := range h {
				summaries = append(summaries, summaryRow{
					City:      string(city),
					Product:   string(p),
					Position:  i,
					SupplyQty: sum.SupplyQty,
					DemandQty: sum.DemandQty,
					Sell:      int64(sum.Sell),
					Buy:       int64(sum.Buy),
				})
			}
		}
	}
	return meta, cities, entities, capital, lines, summaries
}

func fromRows(meta worldMeta, cities []cityRow, entities []entityRow, capital []capitalRow,
	lines []lineRow, summaries []summaryRow) (*world.State, error) {
	st := world.New()
	st.Tick = meta.Tick
	user, err := uuid.Parse(meta.UserID)
	if err != nil {
		return nil, fmt.Errorf("parse user id %q: %w", meta.UserID, err)
	}
	st.User = user

	for _, c := range cities {
		st.Cities[domain.CityName(c.Name)] = domain.City{
			Name:       domain.CityName(c.Name),
			Population: c.Population,
			Growth:     domain.GrowthRate(c.Growth),
		}
	}

	for _, r := range entities {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("parse entity id %q: %w", r.ID, err)
		}
		st.Entities[id] = domain.Entity{
			ID:          id,
			Kind:        domain.EntityKind(r.Kind),
			Name:        r.Name,
			Product:     domain.Product(r.Product),
			Personality: domain.Personality(r.Personality),
		}
		if r.Located {
			st.Locations[id] = domain.CityName(r.City)
		}
	}

	for _, r := range capital {
		id, err := uuid.Parse(r.EntityID)
		if err != nil {
			return nil, fmt.Errorf("parse capital id %q: %w", r.EntityID, err)
		}
		st.Capital[id] = domain.Money(r.Amount)
	}

	for _, r := range lines {
		id, err := uuid.Parse(r.EntityID)
		if err != nil {
			return nil, fmt.Errorf("parse line owner %q: %w", r.EntityID, err)
		}
		st.AddLine(domain.CityName(r.City), id, domain.InventoryLine{
			Product:  domain.Product(r.Product),
			Brand:    domain.Brand(r.Brand),
			Type:     domain.LineType(r.Type),
			Quantity: r.Quantity,
			Bid:      domain.Money(r.Bid),
		})
	}

	for _, r := range summaries {
		city := domain.CityName(r.City)
		byProduct, ok := st.History[city]
		if !ok {
			byProduct = make(map[domain.Product][]domain.MarketSummary)
			st.History[city] = byProduct
		}
		p := domain.Product(r.Product)
		byProduct[p] = append(byProduct[p], domain.MarketSummary{
			Product:   p,
			SupplyQty: r.SupplyQty,
			DemandQty: r.DemandQty,
			Sell:      domain.Money(r.Sell),
			Buy:       domain.Money(r.Buy),
		})
	}
	return st, nil
}
