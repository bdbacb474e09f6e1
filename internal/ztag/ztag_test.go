package ztag

import (
	"fmt"
	"strings"
	"testing"
)

func TestParse_ListRecords(t *testing.T) {
	text := "... change 100\n" +
		"... time 1700000000\n" +
		"... user alice\n" +
		"... change 99\n" +
		"... time 1600000000\n" +
		"... user bob\n"

	records := ParseRecords(text)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	if records[0].Get("change") != "100" {
		t.Errorf("Expected first record change=100, got %s", records[0].Get("change"))
	}
	if records[0].Get("user") != "alice" {
		t.Errorf("Expected first record user=alice, got %s", records[0].Get("user"))
	}
	if records[1].Get("change") != "99" {
		t.Errorf("Expected second record change=99, got %s", records[1].Get("change"))
	}
	if records[1].Get("user") != "bob" {
		t.Errorf("Expected second record user=bob, got %s", records[1].Get("user"))
	}
}

func TestParse_RecordCountMatchesPrimaryKeyCount(t *testing.T) {
	// N primary-key occurrences yield exactly N records, each containing
	// only the fields between its opening key and the next.
	for n := 1; n <= 5; n++ {
		var b strings.Builder
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "... change %d\n... user u%d\n", i, i)
		}

		records := ParseRecords(b.String())
		if len(records) != n {
			t.Fatalf("Expected %d records for %d keys, got %d", n, n, len(records))
		}
		for i, rec := range records {
			if rec.Get("user") != fmt.Sprintf("u%d", i) {
				t.Errorf("Record %d has user %s, fields leaked across boundary", i, rec.Get("user"))
			}
			if rec.Len() != 2 {
				t.Errorf("Record %d has %d fields, want 2", i, rec.Len())
			}
		}
	}
}

func TestParse_IgnoresNonTagLines(t *testing.T) {
	text := "Perforce server info banner\n" +
		"\n" +
		"... change 42\n" +
		"random untagged noise\n" +
		"... user alice\n"

	records := ParseRecords(text)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Len() != 2 {
		t.Errorf("Expected 2 fields, got %d", records[0].Len())
	}
}

func TestParse_SkipsValuelessFields(t *testing.T) {
	text := "... change 42\n" +
		"... shelved\n" +
		"... user alice\n"

	records := ParseRecords(text)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Has("shelved") {
		t.Error("Valueless field should be skipped, not stored")
	}
}

func TestParse_FieldsBeforeFirstPrimaryKeyIgnored(t *testing.T) {
	text := "... user stray\n" +
		"... change 1\n" +
		"... user alice\n"

	records := ParseRecords(text)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Get("user") != "alice" {
		t.Errorf("Expected user=alice, got %s", records[0].Get("user"))
	}
}

func TestParse_EmptyInput(t *testing.T) {
	if records := ParseRecords(""); len(records) != 0 {
		t.Errorf("Expected no records for empty input, got %d", len(records))
	}
	if records := ParseRecords("no tags here\n"); len(records) != 0 {
		t.Errorf("Expected no records for untagged input, got %d", len(records))
	}
}

func TestParseSingle_FirstFieldOpensRecord(t *testing.T) {
	text := "... User alice\n" +
		"... Email alice@example.com\n" +
		"... FullName Alice Smith\n"

	rec := ParseSingle(text)
	if rec == nil {
		t.Fatal("Expected a record")
	}
	if rec.Get("User") != "alice" {
		t.Errorf("Expected User=alice, got %s", rec.Get("User"))
	}
	if rec.Get("FullName") != "Alice Smith" {
		t.Errorf("Expected FullName to keep remainder-as-value, got %q", rec.Get("FullName"))
	}
	if rec.Len() != 3 {
		t.Errorf("Expected 3 fields, got %d", rec.Len())
	}
}

func TestParseSingle_Empty(t *testing.T) {
	if rec := ParseSingle("banner only\n"); rec != nil {
		t.Errorf("Expected nil record, got %v", rec.Fields())
	}
}

func TestRecord_OrderPreserved(t *testing.T) {
	rec := NewRecord()
	rec.Set("b", "1")
	rec.Set("a", "2")
	rec.Set("c", "3")
	rec.Set("a", "4") // overwrite keeps position

	fields := rec.Fields()
	want := []string{"b", "a", "c"}
	if len(fields) != len(want) {
		t.Fatalf("Expected %d fields, got %d", len(want), len(fields))
	}
	for i, f := range want {
		if fields[i] != f {
			t.Errorf("Field %d: expected %s, got %s", i, f, fields[i])
		}
	}
	if rec.Get("a") != "4" {
		t.Errorf("Overwrite should update value, got %s", rec.Get("a"))
	}
}

func TestParse_HandlesCRLF(t *testing.T) {
	text := "... change 7\r\n... user alice\r\n"

	records := ParseRecords(text)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Get("user") != "alice" {
		t.Errorf("Expected user=alice, got %q", records[0].Get("user"))
	}
}
