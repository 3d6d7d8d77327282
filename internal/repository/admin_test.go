package repository

import (
	"testing"

	"github.com/google/uuid"
)

// TestBuildRunWhereEmpty проверяет, что пустой фильтр не добавляет WHERE.
func TestBuildRunWhereEmpty(t *testing.T) {
	where, args := buildRunWhere(RunFilter{})

	if where != "" {
		t.Fatalf("expected empty where clause, got %q", where)
	}

	if len(args) != 0 {
		t.Fatalf("expected no args, got %d", len(args))
	}
}

// TestBuildRunWhereCombined проверяет нумерацию плейсхолдеров при двух условиях.
func TestBuildRunWhereCombined(t *testing.T) {
	userID := uuid.New()
	cacheHit := true
	where, args := buildRunWhere(RunFilter{UserID: &userID, CacheHit: &cacheHit})

	expected := " WHERE user_id = $1 AND cache_hit = $2"
	if where != expected {
		t.Fatalf("expected %q, got %q", expected, where)
	}

	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}

	if args[0] != userID {
		t.Fatalf("expected first arg %v, got %v", userID, args[0])
	}
}
