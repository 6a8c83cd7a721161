package eventbus

import "testing"

func TestSubjectBuilders(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"record", RecordSubject("semantic", "access"), "engram.v1.lifecycle.record.semantic.access"},
		{"relationship", RelationshipSubject("", "link"), "engram.v1.lifecycle.relationship.unknown.link"},
		{"record wildcard", DomainWildcardSubject(DomainRecord), "engram.v1.lifecycle.record.>"},
		{"empty segments", RecordSubject("", ""), "engram.v1.lifecycle.record.unknown.unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, tt.got)
			}
		})
	}
}

func TestSubjectMatches(t *testing.T) {
	tests := []struct {
		pattern string
		subject string
		want    bool
	}{
		{"engram.v1.lifecycle.record.semantic.access", "engram.v1.lifecycle.record.semantic.access", true},
		{"engram.v1.lifecycle.>", "engram.v1.lifecycle.record.semantic.access", true},
		{"engram.v1.lifecycle.record.>", "engram.v1.lifecycle.relationship.unknown.link", false},
		{"engram.v1.lifecycle.record.*.access", "engram.v1.lifecycle.record.episodic.access", true},
		{"engram.v1.lifecycle.record.*.access", "engram.v1.lifecycle.record.episodic.archive", false},
		{"engram.v1.lifecycle.record.semantic", "engram.v1.lifecycle.record.semantic.access", false},
		{"engram.>", "engram.v1.lifecycle.record.semantic.access", true},
	}

	for _, tt := range tests {
		if got := subjectMatches(tt.pattern, tt.subject); got != tt.want {
			t.Errorf("subjectMatches(%q, %q) = %v, want %v", tt.pattern, tt.subject, got, tt.want)
		}
	}
}
