package eventbus

import "fmt"

const (
	// SubjectPrefix is the canonical prefix for distributed lifecycle events.
	SubjectPrefix = "engram.v1.lifecycle"
)

// Domain identifies memory lifecycle event domains.
type Domain string

const (
	DomainRecord       Domain = "record"
	DomainRelationship Domain = "relationship"
)

// RecordSubject returns the canonical record lifecycle subject.
func RecordSubject(memoryType, eventType string) string {
	return fmt.Sprintf("%s.%s.%s.%s", SubjectPrefix, DomainRecord, sanitizeSegment(memoryType), sanitizeSegment(eventType))
}

// RelationshipSubject returns the canonical relationship lifecycle subject.
func RelationshipSubject(memoryType, eventType string) string {
	return fmt.Sprintf("%s.%s.%s.%s", SubjectPrefix, DomainRelationship, sanitizeSegment(memoryType), sanitizeSegment(eventType))
}

// DomainWildcardSubject returns the canonical wildcard subject for a domain.
func DomainWildcardSubject(domain Domain) string {
	return fmt.Sprintf("%s.%s.>", SubjectPrefix, sanitizeSegment(string(domain)))
}

func sanitizeSegment(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
