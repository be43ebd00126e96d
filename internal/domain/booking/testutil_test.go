package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/nathanael250/travooz-hms-sub004/internal/domain/audit"
	"github.com/nathanael250/travooz-hms-sub004/internal/domain/guest"
	"github.com/nathanael250/travooz-hms-sub004/internal/domain/inventory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []inventory.UnitStatusEvent
	err    error
}

func (p *recordingPublisher) PublishUnitStatus(_ context.Context, ev inventory.UnitStatusEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) statuses() []inventory.UnitStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]inventory.UnitStatus, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.To)
	}
	return out
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:booking_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	// one connection: transactions run one after another like row locks would force
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	models := []any{&inventory.RoomType{}, &inventory.Unit{}, &guest.Profile{}, &guest.BookingGuest{}, &audit.Log{}}
	require.NoError(t, db.AutoMigrate(append(models, Models()...)...))
	return db
}

type fixture struct {
	db     *gorm.DB
	svc    *Service
	pub    *recordingPublisher
	audit  *audit.Recorder
	deluxe *inventory.RoomType
	suite  *inventory.RoomType
	units  map[string]*inventory.Unit
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	db := setupTestDB(t)
	ctx := context.Background()
	repo := inventory.NewRepository(db)

	f := &fixture{
		db:    db,
		pub:   &recordingPublisher{},
		audit: audit.NewRecorder(db, nil),
		units: map[string]*inventory.Unit{},
	}

	f.deluxe = &inventory.RoomType{Name: "Deluxe", BasePrice: 100, MaxOccupancy: 2}
	f.suite = &inventory.RoomType{Name: "Suite", BasePrice: 250, MaxOccupancy: 4}
	require.NoError(t, repo.CreateRoomType(ctx, f.deluxe))
	require.NoError(t, repo.CreateRoomType(ctx, f.suite))

	for _, u := range []*inventory.Unit{
		{RoomTypeID: f.deluxe.ID, UnitNumber: "101"},
		{RoomTypeID: f.deluxe.ID, UnitNumber: "102"},
		{RoomTypeID: f.suite.ID, UnitNumber: "201"},
	} {
		require.NoError(t, repo.CreateUnit(ctx, u))
		f.units[u.UnitNumber] = u
	}

	all := append([]Option{WithPublisher(f.pub), WithAudit(f.audit)}, opts...)
	f.svc = NewService(db, nil, all...)
	return f
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func (f *fixture) request(unit string, checkIn, checkOut string) CreateBookingRequest {
	req := CreateBookingRequest{
		CheckIn:      day(checkIn),
		CheckOut:     day(checkOut),
		Guest:        GuestContact{FullName: "Jane Guest", Email: "jane@example.com", Phone: "+250788123456"},
		Adults:       2,
		RatePerNight: 100,
		CreatedBy:    1,
	}
	if unit != "" {
		id := f.units[unit].ID
		req.RoomUnitID = &id
	}
	return req
}

func (f *fixture) create(t *testing.T, unit, checkIn, checkOut string) *BookingSummary {
	t.Helper()
	s, err := f.svc.CreateBooking(context.Background(), f.request(unit, checkIn, checkOut))
	require.NoError(t, err)
	return s
}

func (f *fixture) unitStatus(t *testing.T, unit string) inventory.UnitStatus {
	t.Helper()
	u, err := inventory.NewRepository(f.db).GetUnit(context.Background(), f.units[unit].ID)
	require.NoError(t, err)
	return u.Status
}

func (f *fixture) activeAssignments(t *testing.T, unit string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&RoomAssignment{}).
		Where("room_unit_id = ? AND status IN ?", f.units[unit].ID, activeAssignmentStatuses).
		Count(&n).Error)
	return n
}

// noOverlaps scans every pair of active assignments per unit.
func (f *fixture) noOverlaps(t *testing.T) bool {
	t.Helper()
	var rows []RoomAssignment
	require.NoError(t, f.db.Where("status IN ?", activeAssignmentStatuses).Find(&rows).Error)
	for i := range rows {
		for j := i + 1; j < len(rows); j++ {
			a, b := rows[i], rows[j]
			if a.RoomUnitID == b.RoomUnitID && a.CheckInDate.Before(b.CheckOutDate) && b.CheckInDate.Before(a.CheckOutDate) {
				return false
			}
		}
	}
	return true
}

func isAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
