package inventory

import (
	"errors"
	"testing"

	"agroplan/internal/common"
	"agroplan/internal/testutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Minimal stand-in for the activities table; the reconciliation queries only
// touch id and status. The real model lives in internal/activity, which this
// package cannot import.
type stubActivity struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Status string
}

func (stubActivity) TableName() string {
	return "activities"
}

func setup(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t,
		&Material{},
		&MaterialTransaction{},
		&MaterialReservation{},
		&stubActivity{},
	)
	return NewService(db), db
}

func seedMaterial(t *testing.T, s *Service) *Material {
	t.Helper()
	m, err := s.CreateMaterial(uuid.New(), &CreateMaterialRequest{Name: "NPK fertilizer", Unit: "kg"})
	if err != nil {
		t.Fatalf("CreateMaterial() error: %v", err)
	}
	return m
}

func seedActivity(t *testing.T, db *gorm.DB, status string) uuid.UUID {
	t.Helper()
	act := stubActivity{ID: uuid.New(), Status: status}
	if err := db.Create(&act).Error; err != nil {
		t.Fatalf("failed to seed activity: %v", err)
	}
	return act.ID
}

func reloadMaterial(t *testing.T, s *Service, id uuid.UUID) *Material {
	t.Helper()
	m, err := s.GetMaterial(id)
	if err != nil {
		t.Fatalf("GetMaterial() error: %v", err)
	}
	return m
}

func TestRecordTransaction(t *testing.T) {
	s, _ := setup(t)
	m := seedMaterial(t, s)

	if _, err := s.RecordTransaction(m.ID, TxPurchase, 100, "initial stock"); err != nil {
		t.Fatalf("purchase error: %v", err)
	}
	if _, err := s.RecordTransaction(m.ID, TxAdjustment, -10, "spillage"); err != nil {
		t.Fatalf("adjustment error: %v", err)
	}

	got := reloadMaterial(t, s, m.ID)
	if got.Quantity != 90 {
		t.Errorf("quantity = %v, want 90", got.Quantity)
	}

	txs, err := s.ListTransactions(m.ID)
	if err != nil {
		t.Fatalf("ListTransactions() error: %v", err)
	}
	if len(txs) != 2 {
		t.Errorf("ledger entries = %d, want 2", len(txs))
	}
}

func TestRecordTransactionValidation(t *testing.T) {
	s, _ := setup(t)
	m := seedMaterial(t, s)

	if _, err := s.RecordTransaction(m.ID, TxPurchase, -5, ""); !common.IsValidation(err) {
		t.Errorf("negative purchase: got %v, want validation error", err)
	}
	if _, err := s.RecordTransaction(m.ID, TxAdjustment, 0, ""); !common.IsValidation(err) {
		t.Errorf("zero adjustment: got %v, want validation error", err)
	}
	if _, err := s.RecordTransaction(m.ID, "donation", 5, ""); !common.IsValidation(err) {
		t.Errorf("unknown type: got %v, want validation error", err)
	}
}

func TestReservationCompleteLifecycle(t *testing.T) {
	s, db := setup(t)
	m := seedMaterial(t, s)
	activityID := seedActivity(t, db, "pending")

	if _, err := s.RecordTransaction(m.ID, TxPurchase, 100, ""); err != nil {
		t.Fatalf("purchase error: %v", err)
	}

	r, err := s.Reserve(activityID, m.ID, 81)
	if err != nil {
		t.Fatalf("Reserve() error: %v", err)
	}

	got := reloadMaterial(t, s, m.ID)
	if got.ReservedQuantity != 81 {
		t.Errorf("reserved = %v, want 81", got.ReservedQuantity)
	}
	if got.AvailableQuantity() != 19 {
		t.Errorf("available = %v, want 19", got.AvailableQuantity())
	}

	// actual usage came in under plan
	if err := s.CompleteReservation(r.ID, 75); err != nil {
		t.Fatalf("CompleteReservation() error: %v", err)
	}

	got = reloadMaterial(t, s, m.ID)
	if got.Quantity != 25 {
		t.Errorf("quantity after completion = %v, want 25", got.Quantity)
	}
	if got.ReservedQuantity != 0 {
		t.Errorf("reserved after completion = %v, want 0", got.ReservedQuantity)
	}

	// completing twice is a caller bug
	err = s.CompleteReservation(r.ID, 75)
	if !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("double completion: got %v, want ErrInvalidState", err)
	}
}

func TestReservationRelease(t *testing.T) {
	s, db := setup(t)
	m := seedMaterial(t, s)
	activityID := seedActivity(t, db, "pending")

	if _, err := s.RecordTransaction(m.ID, TxPurchase, 100, ""); err != nil {
		t.Fatalf("purchase error: %v", err)
	}
	r, err := s.Reserve(activityID, m.ID, 81)
	if err != nil {
		t.Fatalf("Reserve() error: %v", err)
	}

	if err := s.ReleaseReservation(r.ID); err != nil {
		t.Fatalf("ReleaseReservation() error: %v", err)
	}

	got := reloadMaterial(t, s, m.ID)
	if got.Quantity != 100 {
		t.Errorf("release must not consume stock: quantity = %v, want 100", got.Quantity)
	}
	if got.ReservedQuantity != 0 {
		t.Errorf("reserved after release = %v, want 0", got.ReservedQuantity)
	}

	if err := s.ReleaseReservation(r.ID); !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("double release: got %v, want ErrInvalidState", err)
	}
	if err := s.CompleteReservation(r.ID, 10); !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("complete after release: got %v, want ErrInvalidState", err)
	}
}

func TestSoftReservationExceedsStock(t *testing.T) {
	s, db := setup(t)
	m := seedMaterial(t, s)
	activityID := seedActivity(t, db, "pending")

	if _, err := s.RecordTransaction(m.ID, TxPurchase, 10, ""); err != nil {
		t.Fatalf("purchase error: %v", err)
	}

	// reservation is advisory bookkeeping, not an allocation gate
	if _, err := s.Reserve(activityID, m.ID, 50); err != nil {
		t.Fatalf("over-stock reservation must succeed, got: %v", err)
	}

	got := reloadMaterial(t, s, m.ID)
	if got.AvailableQuantity() != -40 {
		t.Errorf("available = %v, want -40", got.AvailableQuantity())
	}
}

func TestAuditAndRepair(t *testing.T) {
	s, db := setup(t)
	m := seedMaterial(t, s)
	pendingActivity := seedActivity(t, db, "pending")
	completedActivity := seedActivity(t, db, "completed")

	if _, err := s.RecordTransaction(m.ID, TxPurchase, 200, ""); err != nil {
		t.Fatalf("purchase error: %v", err)
	}
	if _, err := s.Reserve(pendingActivity, m.ID, 30); err != nil {
		t.Fatalf("Reserve() error: %v", err)
	}
	completed, err := s.Reserve(completedActivity, m.ID, 40)
	if err != nil {
		t.Fatalf("Reserve() error: %v", err)
	}
	if err := s.CompleteReservation(completed.ID, 35); err != nil {
		t.Fatalf("CompleteReservation() error: %v", err)
	}

	report, err := s.Audit(m.ID)
	if err != nil {
		t.Fatalf("Audit() error: %v", err)
	}
	if !report.Consistent {
		t.Errorf("fresh ledger should audit clean: %+v", report)
	}
	if report.ComputedQuantity != 165 {
		t.Errorf("computed quantity = %v, want 165", report.ComputedQuantity)
	}
	if report.ComputedReserved != 30 {
		t.Errorf("computed reserved = %v, want 30", report.ComputedReserved)
	}

	// corrupt the stored counters behind the service's back
	if err := db.Model(&Material{}).Where("id = ?", m.ID).UpdateColumns(map[string]interface{}{
		"quantity":          999,
		"reserved_quantity": 999,
	}).Error; err != nil {
		t.Fatalf("failed to corrupt counters: %v", err)
	}

	report, err = s.Audit(m.ID)
	if err != nil {
		t.Fatalf("Audit() error: %v", err)
	}
	if report.Consistent {
		t.Error("audit must detect drifted counters")
	}

	if _, err := s.Repair(m.ID); err != nil {
		t.Fatalf("Repair() error: %v", err)
	}
	got := reloadMaterial(t, s, m.ID)
	if got.Quantity != 165 || got.ReservedQuantity != 30 {
		t.Errorf("after repair: quantity = %v reserved = %v, want 165 / 30", got.Quantity, got.ReservedQuantity)
	}

	// repair is idempotent
	if _, err := s.Repair(m.ID); err != nil {
		t.Fatalf("second Repair() error: %v", err)
	}
	got = reloadMaterial(t, s, m.ID)
	if got.Quantity != 165 || got.ReservedQuantity != 30 {
		t.Errorf("repair not idempotent: quantity = %v reserved = %v", got.Quantity, got.ReservedQuantity)
	}
}

// Reservations whose activity already left the pending states must not count
// toward the recomputed reserved total.
func TestRepairIgnoresSettledActivities(t *testing.T) {
	s, db := setup(t)
	m := seedMaterial(t, s)
	cancelledActivity := seedActivity(t, db, "cancelled")

	if _, err := s.RecordTransaction(m.ID, TxPurchase, 50, ""); err != nil {
		t.Fatalf("purchase error: %v", err)
	}
	// an active reservation left behind by a crash during cancellation
	if _, err := s.Reserve(cancelledActivity, m.ID, 20); err != nil {
		t.Fatalf("Reserve() error: %v", err)
	}

	report, err := s.Repair(m.ID)
	if err != nil {
		t.Fatalf("Repair() error: %v", err)
	}
	if report.ComputedReserved != 0 {
		t.Errorf("reserved = %v, want 0 for cancelled activity", report.ComputedReserved)
	}
}
