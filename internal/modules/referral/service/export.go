package referral

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"newera.app/reentry/internal/entity"
	"newera.app/reentry/internal/modules/referral/repository"
	"newera.app/reentry/pkg/apperror"
)

const exportSheet = "Referrals"

var exportHeader = []string{
	"Referral Date", "Staff", "Client", "Email", "Phone", "Resources", "Date Accessed", "Notes",
}

var exportColumnWidths = []float64{20, 22, 22, 28, 14, 50, 20, 60}

// ExportReferrals builds an xlsx workbook with one row per referral, newest first.
func (s *referralService) ExportReferrals(ctx context.Context, requester *entity.User) ([]byte, error) {
	if requester == nil || !requester.IsAdmin() {
		return nil, fmt.Errorf("only administrators can export referrals: %w", apperror.ErrForbidden)
	}

	referrals, _, err := s.repo.FindAll(ctx, repository.ListFilter{})
	if err != nil {
		return nil, err
	}
	return buildWorkbook(referrals)
}

func buildWorkbook(referrals []*entity.Referral) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}

		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(exportSheet, name, name, exportColumnWidths[col]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, r := range referrals {
		res := ToResponse(r)
		accessed := ""
		if res.DateAccessed != nil {
			accessed = res.DateAccessed.Format("2006-01-02 15:04")
		}
		names := make([]string, 0, len(res.Resources))
		for _, rs := range res.Resources {
			names = append(names, rs.Name)
		}

		row := []any{
			res.ReferralDate.Format("2006-01-02 15:04"),
			res.StaffName,
			res.ClientName,
			res.Email,
			res.Phone,
			strings.Join(names, ", "),
			accessed,
			res.Notes,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
