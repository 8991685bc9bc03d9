package schema

import "testing"

func TestStringSchemaPattern(t *testing.T) {
	s := &StringSchema{Pattern: `^[a-z]+$`}
	if _, err := s.Validate("abc"); err != nil {
		t.Fatalf("expected abc to match pattern, got %v", err)
	}
	if _, err := s.Validate("ABC"); err == nil {
		t.Fatal("expected ABC to fail pattern match")
	}
}

func TestNumberSchemaRange(t *testing.T) {
	s := &NumberSchema{Min: 1, Max: 10}
	if _, err := s.Validate(5.0); err != nil {
		t.Fatalf("expected 5 within range, got %v", err)
	}
	if _, err := s.Validate(20.0); err == nil {
		t.Fatal("expected 20 to exceed max")
	}
}
