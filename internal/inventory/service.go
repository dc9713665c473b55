package inventory

import (
	"fmt"
	"math"

	"agroplan/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const driftTolerance = 1e-6

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// =============================================
// MATERIALS
// =============================================

func (s *Service) CreateMaterial(userID uuid.UUID, req *CreateMaterialRequest) (*Material, error) {
	m := &Material{
		UserID:   userID,
		Name:     req.Name,
		Unit:     req.Unit,
		Category: req.Category,
	}
	if err := s.db.Create(m).Error; err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}
	return m, nil
}

func (s *Service) GetMaterial(id uuid.UUID) (*Material, error) {
	var m Material
	if err := s.db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, fmt.Errorf("failed to get material: %w", err)
	}
	return &m, nil
}

func (s *Service) ListMaterials(userID uuid.UUID) ([]Material, error) {
	var materials []Material
	if err := s.db.Where("user_id = ?", userID).Order("name").Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	return materials, nil
}

func (s *Service) ListTransactions(materialID uuid.UUID) ([]MaterialTransaction, error) {
	var txs []MaterialTransaction
	if err := s.db.Where("material_id = ?", materialID).Order("created_at").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

// =============================================
// LEDGER OPERATIONS
// =============================================

// RecordTransaction appends a purchase or adjustment entry and moves the
// on-hand counter by the same amount. Purchases must be positive; adjustments
// carry their sign and are otherwise unconstrained.
func (s *Service) RecordTransaction(materialID uuid.UUID, txType string, quantity float64, note string) (*MaterialTransaction, error) {
	switch txType {
	case TxPurchase:
		if quantity <= 0 {
			return nil, common.NewValidationError("quantity", "purchase quantity must be positive")
		}
	case TxAdjustment:
		if quantity == 0 {
			return nil, common.NewValidationError("quantity", "adjustment quantity must be non-zero")
		}
	default:
		return nil, common.NewValidationError("transaction_type", "must be purchase or adjustment")
	}

	entry := &MaterialTransaction{
		MaterialID:      materialID,
		TransactionType: txType,
		Quantity:        quantity,
		Note:            note,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var m Material
		if err := tx.Where("id = ?", materialID).First(&m).Error; err != nil {
			return fmt.Errorf("failed to get material: %w", err)
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		if err := tx.Model(&Material{}).Where("id = ?", materialID).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity)).Error; err != nil {
			return fmt.Errorf("failed to update on-hand quantity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ReserveTx creates a reservation for an activity's planned material usage
// inside the caller's transaction. Reservations are soft bookkeeping: they
// may exceed the available stock and never fail on quantity grounds.
func (s *Service) ReserveTx(tx *gorm.DB, activityID, materialID uuid.UUID, planned float64) (*MaterialReservation, error) {
	r := &MaterialReservation{
		ActivityID:      activityID,
		MaterialID:      materialID,
		PlannedQuantity: planned,
		Status:          ReservationActive,
	}
	if err := tx.Create(r).Error; err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	if err := tx.Model(&Material{}).Where("id = ?", materialID).
		UpdateColumn("reserved_quantity", gorm.Expr("reserved_quantity + ?", planned)).Error; err != nil {
		return nil, fmt.Errorf("failed to update reserved quantity: %w", err)
	}
	return r, nil
}

// Reserve is ReserveTx in its own transaction.
func (s *Service) Reserve(activityID, materialID uuid.UUID, planned float64) (*MaterialReservation, error) {
	var r *MaterialReservation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		r, err = s.ReserveTx(tx, activityID, materialID, planned)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CompleteReservationTx converts a reservation into consumption: the reserved
// counter drops by the planned quantity, on-hand drops by what was actually
// used. Completing twice, or completing a released reservation, is a caller
// bug and fails with an invalid-state error.
func (s *Service) CompleteReservationTx(tx *gorm.DB, reservationID uuid.UUID, actual float64) error {
	var r MaterialReservation
	if err := tx.Where("id = ?", reservationID).First(&r).Error; err != nil {
		return fmt.Errorf("failed to get reservation: %w", err)
	}
	if r.Status != ReservationActive {
		return fmt.Errorf("reservation %s is %s: %w", reservationID, r.Status, common.ErrInvalidState)
	}

	if err := tx.Model(&r).Updates(map[string]interface{}{
		"actual_quantity": actual,
		"status":          ReservationCompleted,
	}).Error; err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}

	if err := tx.Model(&Material{}).Where("id = ?", r.MaterialID).UpdateColumns(map[string]interface{}{
		"quantity":          gorm.Expr("quantity - ?", actual),
		"reserved_quantity": gorm.Expr("reserved_quantity - ?", r.PlannedQuantity),
	}).Error; err != nil {
		return fmt.Errorf("failed to update material counters: %w", err)
	}
	return nil
}

// ReleaseReservationTx drops a still-pending claim without consuming stock.
func (s *Service) ReleaseReservationTx(tx *gorm.DB, reservationID uuid.UUID) error {
	var r MaterialReservation
	if err := tx.Where("id = ?", reservationID).First(&r).Error; err != nil {
		return fmt.Errorf("failed to get reservation: %w", err)
	}
	if r.Status != ReservationActive {
		return fmt.Errorf("reservation %s is %s: %w", reservationID, r.Status, common.ErrInvalidState)
	}

	if err := tx.Model(&r).Update("status", ReservationReleased).Error; err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if err := tx.Model(&Material{}).Where("id = ?", r.MaterialID).
		UpdateColumn("reserved_quantity", gorm.Expr("reserved_quantity - ?", r.PlannedQuantity)).Error; err != nil {
		return fmt.Errorf("failed to update reserved quantity: %w", err)
	}
	return nil
}

// CompleteReservation / ReleaseReservation run in their own transactions.
func (s *Service) CompleteReservation(reservationID uuid.UUID, actual float64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.CompleteReservationTx(tx, reservationID, actual)
	})
}

func (s *Service) ReleaseReservation(reservationID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.ReleaseReservationTx(tx, reservationID)
	})
}

// ReservationsForActivity returns all reservations owned by one activity.
func (s *Service) ReservationsForActivity(tx *gorm.DB, activityID uuid.UUID) ([]MaterialReservation, error) {
	if tx == nil {
		tx = s.db
	}
	var reservations []MaterialReservation
	if err := tx.Where("activity_id = ?", activityID).Order("created_at").Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to get reservations: %w", err)
	}
	return reservations, nil
}

// =============================================
// RECONCILIATION
// =============================================

// Audit recomputes both counters of a material from the source ledger and
// reports drift without correcting it.
func (s *Service) Audit(materialID uuid.UUID) (*AuditReport, error) {
	m, err := s.GetMaterial(materialID)
	if err != nil {
		return nil, err
	}

	computedQty, computedReserved, err := s.recomputeCounters(s.db, materialID)
	if err != nil {
		return nil, err
	}

	return &AuditReport{
		MaterialID:       m.ID,
		Name:             m.Name,
		StoredQuantity:   m.Quantity,
		ComputedQuantity: computedQty,
		StoredReserved:   m.ReservedQuantity,
		ComputedReserved: computedReserved,
		Consistent: math.Abs(m.Quantity-computedQty) < driftTolerance &&
			math.Abs(m.ReservedQuantity-computedReserved) < driftTolerance,
	}, nil
}

// Repair overwrites the stored counters with recomputed values. Idempotent
// maintenance operation, not part of the request path.
func (s *Service) Repair(materialID uuid.UUID) (*AuditReport, error) {
	var report *AuditReport
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var m Material
		if err := tx.Where("id = ?", materialID).First(&m).Error; err != nil {
			return fmt.Errorf("failed to get material: %w", err)
		}

		computedQty, computedReserved, err := s.recomputeCounters(tx, materialID)
		if err != nil {
			return err
		}

		if err := tx.Model(&Material{}).Where("id = ?", materialID).UpdateColumns(map[string]interface{}{
			"quantity":          computedQty,
			"reserved_quantity": computedReserved,
		}).Error; err != nil {
			return fmt.Errorf("failed to overwrite counters: %w", err)
		}

		report = &AuditReport{
			MaterialID:       m.ID,
			Name:             m.Name,
			StoredQuantity:   computedQty,
			ComputedQuantity: computedQty,
			StoredReserved:   computedReserved,
			ComputedReserved: computedReserved,
			Consistent:       true,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// recomputeCounters derives both counters from source records:
// on-hand   = sum of ledger entries - sum of actual consumption
// reserved  = sum of planned over active reservations whose activity has not
//             yet completed or been cancelled
func (s *Service) recomputeCounters(tx *gorm.DB, materialID uuid.UUID) (float64, float64, error) {
	var txSum float64
	if err := tx.Model(&MaterialTransaction{}).
		Where("material_id = ?", materialID).
		Select("COALESCE(SUM(quantity), 0)").Scan(&txSum).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to sum transactions: %w", err)
	}

	var consumedSum float64
	if err := tx.Model(&MaterialReservation{}).
		Where("material_id = ? AND status = ?", materialID, ReservationCompleted).
		Select("COALESCE(SUM(actual_quantity), 0)").Scan(&consumedSum).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to sum consumption: %w", err)
	}

	var reservedSum float64
	err := tx.Raw(`
		SELECT COALESCE(SUM(r.planned_quantity), 0)
		FROM material_reservations r
		JOIN activities a ON a.id = r.activity_id
		WHERE r.material_id = ? AND r.status = ? AND a.status IN (?, ?)
	`, materialID, ReservationActive, "pending", "in_progress").Scan(&reservedSum).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to sum reservations: %w", err)
	}

	return txSum - consumedSum, reservedSum, nil
}
