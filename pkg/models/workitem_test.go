package models

import "testing"

func TestItemType_Valid(t *testing.T) {
	tests := []struct {
		name string
		typ  ItemType
		want bool
	}{
		{"story is valid", ItemTypeStory, true},
		{"feature is valid", ItemTypeFeature, true},
		{"epic is valid", ItemTypeEpic, true},
		{"enabler is valid", ItemTypeEnabler, true},
		{"empty string is invalid", ItemType(""), false},
		{"unknown type is invalid", ItemType("task"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.Valid(); got != tt.want {
				t.Errorf("ItemType(%q).Valid() = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestWorkItem_Attribute(t *testing.T) {
	item := WorkItem{
		Attributes: map[string]float64{"business_value": 4},
	}

	if got := item.Attribute("business_value", 3); got != 4 {
		t.Errorf("Attribute(business_value) = %v, want 4", got)
	}
	if got := item.Attribute("time_criticality", 3); got != 3 {
		t.Errorf("Attribute(time_criticality) = %v, want default 3", got)
	}

	var empty WorkItem
	if got := empty.Attribute("anything", 3); got != 3 {
		t.Errorf("Attribute on nil map = %v, want default 3", got)
	}
}
