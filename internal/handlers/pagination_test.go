package handlers

import "testing"

func TestParsePaginationParams(t *testing.T) {
	tests := []struct {
		name      string
		pageStr   string
		limitStr  string
		wantPage  int64
		wantLimit int64
		wantErr   bool
	}{
		{name: "defaults when empty", pageStr: "", limitStr: "", wantPage: 1, wantLimit: 10},
		{name: "explicit values", pageStr: "3", limitStr: "25", wantPage: 3, wantLimit: 25},
		{name: "limit at cap", pageStr: "1", limitStr: "100", wantPage: 1, wantLimit: 100},
		{name: "limit above cap", pageStr: "1", limitStr: "101", wantErr: true},
		{name: "zero page", pageStr: "0", limitStr: "10", wantErr: true},
		{name: "negative limit", pageStr: "1", limitStr: "-5", wantErr: true},
		{name: "non-numeric page", pageStr: "abc", limitStr: "10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit, err := parsePaginationParams(tt.pageStr, tt.limitStr)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page != tt.wantPage || limit != tt.wantLimit {
				t.Fatalf("got page=%d limit=%d, want page=%d limit=%d", page, limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}
