package store

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"pallet-cubing-backend/internal/model"
)

// Store is the durable table of pallet records.
type Store interface {
	Insert(ctx context.Context, rec *model.PalletRecord) (int64, error)
	RecordsByTrailer(ctx context.Context, trailer string) ([]model.PalletRecord, error)
	RecordsByTrailerAndPro(ctx context.Context, trailer, pro string) ([]model.PalletRecord, error)
	// ExportRecordsByTrailer orders PROs by first insert, matching the summary,
	// not by PRO number; pallets follow sequence within each PRO.
	ExportRecordsByTrailer(ctx context.Context, trailer string) ([]model.PalletRecord, error)
	CountByTrailerAndPro(ctx context.Context, trailer, pro string) (int, error)
	MaxSequenceByTrailerAndPro(ctx context.Context, trailer, pro string) (int, error)
	UpdateHeaderByTrailerAndPro(ctx context.Context, upd HeaderUpdate) (int64, error)
	DeleteByTrailer(ctx context.Context, trailer string) (int64, error)
	DeleteByTrailerAndPro(ctx context.Context, trailer, pro string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	SummaryByTrailer(ctx context.Context, trailer string) ([]ProSummary, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Insert writes one pallet record and returns its row id. The caller assigns
// the pallet sequence; the store never renumbers it.
func (s *gormStore) Insert(ctx context.Context, rec *model.PalletRecord) (int64, error) {
	if rec.Status == "" {
		rec.Status = model.StatusNew
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return 0, fmt.Errorf("failed to insert pallet %d of PRO %s on trailer %s: %w",
			rec.PalletSequence, rec.ProNumberIncoming, rec.TrailerNumber, err)
	}
	return rec.ID, nil
}

// RecordsByTrailer returns every record of a trailer ordered by pallet sequence.
func (s *gormStore) RecordsByTrailer(ctx context.Context, trailer string) ([]model.PalletRecord, error) {
	var records []model.PalletRecord
	if err := s.db.WithContext(ctx).
		Where("trailer_number = ?", trailer).
		Order("pallet_sequence, id").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query records for trailer %s: %w", trailer, err)
	}
	return records, nil
}

// RecordsByTrailerAndPro returns the records of one PRO ordered by pallet sequence.
func (s *gormStore) RecordsByTrailerAndPro(ctx context.Context, trailer, pro string) ([]model.PalletRecord, error) {
	var records []model.PalletRecord
	if err := s.db.WithContext(ctx).
		Where("trailer_number = ? AND pro_number_incoming = ?", trailer, pro).
		Order("pallet_sequence").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query records for PRO %s on trailer %s: %w", pro, trailer, err)
	}
	return records, nil
}

// ExportRecordsByTrailer returns a trailer's records grouped by PRO, PROs in the
// order they were first captured, pallets by sequence within each PRO.
func (s *gormStore) ExportRecordsByTrailer(ctx context.Context, trailer string) ([]model.PalletRecord, error) {
	firstSeen := s.db.Model(&model.PalletRecord{}).
		Select("pro_number_incoming, MIN(id) AS first_id").
		Where("trailer_number = ?", trailer).
		Group("pro_number_incoming")

	var records []model.PalletRecord
	if err := s.db.WithContext(ctx).
		Model(&model.PalletRecord{}).
		Joins("JOIN (?) AS f ON f.pro_number_incoming = cubing_data.pro_number_incoming", firstSeen).
		Where("cubing_data.trailer_number = ?", trailer).
		Order("f.first_id, cubing_data.pallet_sequence").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query export records for trailer %s: %w", trailer, err)
	}
	return records, nil
}

// CountByTrailerAndPro counts the pallets already saved for a PRO.
func (s *gormStore) CountByTrailerAndPro(ctx context.Context, trailer, pro string) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&model.PalletRecord{}).
		Where("trailer_number = ? AND pro_number_incoming = ?", trailer, pro).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count pallets for PRO %s on trailer %s: %w", pro, trailer, err)
	}
	return int(count), nil
}

// MaxSequenceByTrailerAndPro returns the highest saved pallet sequence, 0 if none.
func (s *gormStore) MaxSequenceByTrailerAndPro(ctx context.Context, trailer, pro string) (int, error) {
	var maxSeq int
	row := s.db.WithContext(ctx).
		Model(&model.PalletRecord{}).
		Select("COALESCE(MAX(pallet_sequence), 0)").
		Where("trailer_number = ? AND pro_number_incoming = ?", trailer, pro).
		Row()
	if err := row.Scan(&maxSeq); err != nil {
		return 0, fmt.Errorf("failed to read max pallet sequence for PRO %s on trailer %s: %w", pro, trailer, err)
	}
	return maxSeq, nil
}

// UpdateHeaderByTrailerAndPro rewrites the header fields of every saved pallet of a PRO.
func (s *gormStore) UpdateHeaderByTrailerAndPro(ctx context.Context, upd HeaderUpdate) (int64, error) {
	var temp2 interface{}
	if upd.Temp2 != nil {
		temp2 = *upd.Temp2
	}
	res := s.db.WithContext(ctx).
		Model(&model.PalletRecord{}).
		Where("trailer_number = ? AND pro_number_incoming = ?", upd.Trailer, upd.Pro).
		Updates(map[string]interface{}{
			"expected_pallets": upd.ExpectedPallets,
			"freight_type":     upd.FreightType,
			"temp1":            upd.Temp1,
			"temp2":            temp2,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update header for PRO %s on trailer %s: %w", upd.Pro, upd.Trailer, res.Error)
	}
	log.Printf("Updated header on %d records for PRO %s on trailer %s", res.RowsAffected, upd.Pro, upd.Trailer)
	return res.RowsAffected, nil
}

// DeleteByTrailer removes every record of a trailer.
func (s *gormStore) DeleteByTrailer(ctx context.Context, trailer string) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("trailer_number = ?", trailer).
		Delete(&model.PalletRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete records for trailer %s: %w", trailer, res.Error)
	}
	log.Printf("Deleted %d records for trailer %s", res.RowsAffected, trailer)
	return res.RowsAffected, nil
}

// DeleteByTrailerAndPro removes every record of one PRO on a trailer.
func (s *gormStore) DeleteByTrailerAndPro(ctx context.Context, trailer, pro string) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("trailer_number = ? AND pro_number_incoming = ?", trailer, pro).
		Delete(&model.PalletRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete records for PRO %s on trailer %s: %w", pro, trailer, res.Error)
	}
	log.Printf("Deleted %d records for PRO %s on trailer %s", res.RowsAffected, pro, trailer)
	return res.RowsAffected, nil
}

// DeleteAll empties the table.
func (s *gormStore) DeleteAll(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.PalletRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete all records: %w", res.Error)
	}
	log.Printf("Deleted all %d records", res.RowsAffected)
	return res.RowsAffected, nil
}

// SummaryByTrailer lists each PRO on a trailer with its pallet count, first seen first.
func (s *gormStore) SummaryByTrailer(ctx context.Context, trailer string) ([]ProSummary, error) {
	var rows []ProSummary
	if err := s.db.WithContext(ctx).
		Model(&model.PalletRecord{}).
		Select("pro_number_incoming AS pro_number, COUNT(*) AS pallet_count, MAX(expected_pallets) AS expected_pallets, MIN(timestamp) AS first_seen").
		Where("trailer_number = ?", trailer).
		Group("pro_number_incoming").
		Order("MIN(timestamp), MIN(id)").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to summarise trailer %s: %w", trailer, err)
	}
	return rows, nil
}
