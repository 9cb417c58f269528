package ingest_test

import (
	"errors"
	"reflect"
	"testing"

	"equip-go/internal/ingest"
	"equip-go/internal/models"

	"github.com/xuri/excelize/v2"
)

const header = "Equipment Name,Type,Flowrate,Pressure,Temperature"

func TestIngestCoercesCells(t *testing.T) {
	payload := "\xEF\xBB\xBF" + header + ",Location\n" +
		"Pump-1,Pump,120.5,5.2,110,Bay A\n" +
		"Valve-1,Valve,,4.1,abc,\n"

	cols, rows, err := ingest.Ingest("sample.csv", []byte(payload))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(cols) != 6 || cols[0] != "Equipment Name" || cols[5] != "Location" {
		t.Fatalf("unexpected columns: %v", cols)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	first := rows[0]
	if v, _ := first.Get("Flowrate"); v != 120.5 {
		t.Fatalf("flowrate = %#v, want 120.5", v)
	}
	if v, _ := first.Get("Location"); v != "Bay A" {
		t.Fatalf("extra column lost: %#v", v)
	}

	second := rows[1]
	if v, ok := second.Get("Flowrate"); !ok || v != nil {
		t.Fatalf("empty cell should be null, got %#v", v)
	}
	if v, _ := second.Get("Temperature"); v != "abc" {
		t.Fatalf("non-numeric cell should stay string, got %#v", v)
	}
	if v, ok := second.Get("Location"); !ok || v != nil {
		t.Fatalf("trailing empty cell should be null, got %#v", v)
	}
}

func TestValidateListsEveryMissingColumn(t *testing.T) {
	_, _, err := ingest.Ingest("bad.csv", []byte("Equipment Name,type,Pressure\nA,Pump,1\n"))
	var schemaErr *ingest.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	want := []string{"Type", "Flowrate", "Temperature"}
	if !reflect.DeepEqual(schemaErr.Missing, want) {
		t.Fatalf("missing = %v, want %v", schemaErr.Missing, want)
	}
	if schemaErr.Error() != "缺少必需列: Type, Flowrate, Temperature" {
		t.Fatalf("message = %q", schemaErr.Error())
	}
}

func TestRejectsRowsWiderThanHeader(t *testing.T) {
	payload := header + "\n" +
		"Pump-1,Pump,120,5,110\n" +
		"Pump-2,Pump,130,6,115,Bay B\n"

	_, _, err := ingest.Ingest("wide.csv", []byte(payload))
	var raggedErr *ingest.RaggedRowError
	if !errors.As(err, &raggedErr) {
		t.Fatalf("expected RaggedRowError, got %v", err)
	}
	if raggedErr.Record != 2 || raggedErr.Cells != 6 || raggedErr.Columns != 5 {
		t.Fatalf("error = %+v", raggedErr)
	}
	if raggedErr.Error() != "第2条记录有6个单元格，超出表头的5列" {
		t.Fatalf("message = %q", raggedErr.Error())
	}
}

func TestTrailingEmptyCellsAreIgnored(t *testing.T) {
	payload := header + "\n" + "Pump-1,Pump,120,5,110,, \n"

	_, rows, err := ingest.Ingest("padded.csv", []byte(payload))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(rows) != 1 || len(rows[0]) != 5 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestHeaderOnlyIsValid(t *testing.T) {
	_, rows, err := ingest.Ingest("empty.csv", []byte(header+"\n"))
	if err != nil {
		t.Fatalf("header-only payload should be valid: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows = %d, want 0", len(rows))
	}
}

func TestEmptyPayload(t *testing.T) {
	for _, payload := range []string{"", "\n\n", "\xEF\xBB\xBF"} {
		if _, _, err := ingest.Ingest("x.csv", []byte(payload)); !errors.Is(err, ingest.ErrEmptyPayload) {
			t.Fatalf("payload %q: expected ErrEmptyPayload, got %v", payload, err)
		}
	}
}

func TestCoerce(t *testing.T) {
	cases := []struct {
		in   string
		want interface{}
	}{
		{"", nil},
		{"   ", nil},
		{"NaN", nil},
		{"N/A", nil},
		{"42", 42.0},
		{" -3.5 ", -3.5},
		{"1e3", 1000.0},
		{"Inf", "Inf"},
		{"12 bar", "12 bar"},
	}
	for _, tc := range cases {
		if got := ingest.Coerce(tc.in); got != tc.want {
			t.Errorf("Coerce(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}

func TestIngestXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Equipment Name", "Type", "Flowrate", "Pressure", "Temperature"}); err != nil {
		t.Fatalf("header: %v", err)
	}
	if err := f.SetSheetRow(sheet, "A2", &[]interface{}{"HX-1", "Heat Exchanger", 80, 3.5, 150}); err != nil {
		t.Fatalf("row: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	_, rows, err := ingest.Ingest("plant.xlsx", buf.Bytes())
	if err != nil {
		t.Fatalf("ingest xlsx: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if v, _ := rows[0].Get(models.ColumnPressure); v != 3.5 {
		t.Fatalf("pressure = %#v, want 3.5", v)
	}
	if v, _ := rows[0].Get(models.ColumnType); v != "Heat Exchanger" {
		t.Fatalf("type = %#v", v)
	}
}
