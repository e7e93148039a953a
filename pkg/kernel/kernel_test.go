package kernel

import "testing"

func TestPageNormalizeAndOffset(t *testing.T) {
	p := Page{Number: 0, PerPage: 0}.Normalize()
	if p.Number != 1 || p.PerPage != 20 {
		t.Fatalf("expected defaults 1/20, got %+v", p)
	}

	p2 := Page{Number: 3, PerPage: 10}
	if p2.Offset() != 20 {
		t.Errorf("expected offset 20, got %d", p2.Offset())
	}
	if p2.Limit() != 10 {
		t.Errorf("expected limit 10, got %d", p2.Limit())
	}
}

func TestNewResult(t *testing.T) {
	r := NewResult(45, Page{Number: 1, PerPage: 20})
	if r.TotalPages != 3 {
		t.Errorf("expected 3 total pages for 45 rows at 20/page, got %d", r.TotalPages)
	}
}

func TestFilterBuilderDefaultsToSoftDelete(t *testing.T) {
	clause, args := NewFilterBuilder().Build()
	if clause != "deleted_at IS NULL" {
		t.Errorf("expected default soft-delete clause, got %q", clause)
	}
	if len(args) != 0 {
		t.Errorf("expected no args, got %v", args)
	}
}

func TestFilterBuilderEqSkipsZeroValues(t *testing.T) {
	fb := NewFilterBuilder().Eq("gym_id", "").Eq("status", "active")
	clause, args := fb.Build()
	if clause != "deleted_at IS NULL AND status = $1" {
		t.Errorf("unexpected clause: %q", clause)
	}
	if len(args) != 1 || args[0] != "active" {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	ub := NewUpdateBuilder().SetIfNonEmpty("name", "New Name").SetIfNonEmpty("email", "")
	if ub.IsEmpty() {
		t.Fatal("expected update to have a field set")
	}
	setClause, args, next := ub.Build()
	if setClause != "updated_at = now(), name = $1" {
		t.Errorf("unexpected set clause: %q", setClause)
	}
	if len(args) != 1 || next != 2 {
		t.Errorf("unexpected args/next: %v %d", args, next)
	}
}

func TestUpdateBuilderEmpty(t *testing.T) {
	ub := NewUpdateBuilder()
	if !ub.IsEmpty() {
		t.Error("expected fresh builder to be empty")
	}
}
