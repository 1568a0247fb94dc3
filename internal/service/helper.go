package service

import (
	"errors"

	"anoa.com/wikigradebook/pkg/fieldval"
	"gorm.io/gorm"
)

// Entity kind names used in write results and batch reports.
const (
	KindAssignment = "assignment"
	KindEvaluation = "evaluation"
	KindAdjustment = "adjustment"
	KindGroup      = "group"
)

// parseRecordID interprets a raw id field from the form layer. Empty,
// non-numeric or non-positive input means "no existing record", which puts
// the write on the create path.
func parseRecordID(raw string) (uint, bool) {
	n, err := fieldval.Int(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return uint(n), true
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
