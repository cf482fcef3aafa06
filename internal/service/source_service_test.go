package service_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/apperrors"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/service"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/testutil"
)

// TestSourceService_ImportCSV tests the ImportCSV method.
//
// WHY: Imports are the only way data enters the system. This ensures each
// table parses its export format, re-imports replace rather than append,
// and unknown tables are rejected.
func TestSourceService_ImportCSV(t *testing.T) {
	t.Run("imports an AAT export", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSourceService(t, db)

		csv := strings.Join([]string{
			"Deal Name,Portfolio Manager,AAT IRR,AAT Duration",
			"Harbor Gate Partners,A. Mercer,0.12,4.1",
			"Blankside Intl,B. Ito,,",
		}, "\n")

		// Execute
		count, err := svc.ImportCSV(service.TableAAT, testDate, strings.NewReader(csv))

		// Assert
		if err != nil {
			t.Fatalf("ImportCSV() returned unexpected error: %v", err)
		}
		if count != 2 {
			t.Errorf("Expected 2 rows imported, got %d", count)
		}

		status, err := svc.GetStatus(testDate)
		if err != nil {
			t.Fatalf("GetStatus() returned unexpected error: %v", err)
		}
		if status.AATRows != 2 {
			t.Errorf("Expected 2 AAT rows, got %d", status.AATRows)
		}
		if status.Complete() {
			t.Error("Expected incomplete status with only AAT loaded")
		}
	})

	t.Run("re-import replaces prior rows for the date", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSourceService(t, db)

		first := "Deal Name,Portfolio Manager,AAT IRR,AAT Duration\nOne,PM,0.1,1.0\nTwo,PM,0.2,2.0"
		second := "Deal Name,Portfolio Manager,AAT IRR,AAT Duration\nThree,PM,0.3,3.0"
		if _, err := svc.ImportCSV(service.TableAAT, testDate, strings.NewReader(first)); err != nil {
			t.Fatalf("First ImportCSV() returned unexpected error: %v", err)
		}

		// Execute
		count, err := svc.ImportCSV(service.TableAAT, testDate, strings.NewReader(second))

		// Assert
		if err != nil {
			t.Fatalf("Second ImportCSV() returned unexpected error: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 row imported, got %d", count)
		}
		status, err := svc.GetStatus(testDate)
		if err != nil {
			t.Fatalf("GetStatus() returned unexpected error: %v", err)
		}
		if status.AATRows != 1 {
			t.Errorf("Expected replacement to leave 1 row, got %d", status.AATRows)
		}
	})

	t.Run("a full import makes the date complete", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSourceService(t, db)

		imports := map[string]string{
			service.TableAAT: "Deal Name,Portfolio Manager,AAT IRR,AAT Duration\nHarbor Gate,PM,0.12,4.1",
			service.TableECF: "Deal Name,ECF IRR,Prev ECF IRR,ECF Duration\nHarbor Gate,0.06,0.05,4.0",
			service.TableMV:  "Deal Name,Instrument,Market Value,Liq Cap\nHarbor Gate,,\"30,000,000\",\"28,000,000\"",
		}

		// Execute
		for table, csv := range imports {
			if _, err := svc.ImportCSV(table, testDate, strings.NewReader(csv)); err != nil {
				t.Fatalf("ImportCSV(%s) returned unexpected error: %v", table, err)
			}
		}

		// Assert
		status, err := svc.GetStatus(testDate)
		if err != nil {
			t.Fatalf("GetStatus() returned unexpected error: %v", err)
		}
		if !status.Complete() {
			t.Errorf("Expected complete status, got %+v", status)
		}
		dates, err := svc.GetCompleteDates()
		if err != nil {
			t.Fatalf("GetCompleteDates() returned unexpected error: %v", err)
		}
		if len(dates) != 1 || dates[0] != testDate {
			t.Errorf("Expected [%s], got %v", testDate, dates)
		}
	})

	t.Run("imports the pm-owners mapping globally", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSourceService(t, db)

		csv := "Portfolio Manager,AAT PM Owner\nA. Mercer,Mercer Desk\nB. Ito,Ito Desk"

		// Execute: no date for the global mapping
		count, err := svc.ImportCSV(service.TablePMOwners, "", strings.NewReader(csv))

		// Assert
		if err != nil {
			t.Fatalf("ImportCSV() returned unexpected error: %v", err)
		}
		if count != 2 {
			t.Errorf("Expected 2 mappings imported, got %d", count)
		}
	})

	t.Run("rejects unknown tables", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSourceService(t, db)

		_, err := svc.ImportCSV("positions", testDate, strings.NewReader("a,b\n1,2"))
		if !errors.Is(err, apperrors.ErrUnknownSourceTable) {
			t.Errorf("Expected ErrUnknownSourceTable, got %v", err)
		}
	})

	t.Run("rejects exports with missing columns", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSourceService(t, db)

		csv := "Deal Name,AAT IRR\nHarbor Gate,0.12"
		_, err := svc.ImportCSV(service.TableAAT, testDate, strings.NewReader(csv))
		if !errors.Is(err, apperrors.ErrInvalidCSVHeaders) {
			t.Errorf("Expected ErrInvalidCSVHeaders, got %v", err)
		}
	})
}
