package types

import "strings"

// TopicOffTopic is the router's fail-safe sentinel. It is never stored in
// chunk metadata; a chunk is only retrievable under one of CanonicalTopics.
const TopicOffTopic = "off_topic"

// TopicFilterField is the chunk metadata property the retriever filters on.
// The ingestion pass stores the document Title as the chunk's "title" and
// the router must answer with one of those exact titles.
const TopicFilterField = "title"

// CanonicalTopics is the closed set of section titles shared between
// ingestion metadata and the router's allowed output. Changing one side
// without the other silently breaks filtered retrieval, so both read from
// this list.
var CanonicalTopics = []string{
	"Introduction",
	"Family Background",
	"Education",
	"Job Summary",
	"Project Details",
	"Skills",
	"Honours and Awards",
	"Licences and Certifications",
	"Hobbies",
	"Languages Known",
	"Weakness",
	"Role Suitability",
}

// IsCanonicalTopic reports whether topic is one of the canonical titles.
func IsCanonicalTopic(topic string) bool {
	for _, t := range CanonicalTopics {
		if t == topic {
			return true
		}
	}
	return false
}

// NormalizeTopic maps a raw classifier answer onto the canonical set.
// Surrounding whitespace, punctuation and quotes are stripped and matching
// is case-insensitive. Anything that does not match a known topic is
// coerced to TopicOffTopic so an ambiguous classification can never drive
// a wrong retrieval filter.
func NormalizeTopic(raw string) string {
	candidate := strings.TrimSpace(raw)
	candidate = strings.Trim(candidate, ".\n \"'`:")
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return TopicOffTopic
	}
	for _, t := range CanonicalTopics {
		if strings.EqualFold(t, candidate) {
			return t
		}
	}
	return TopicOffTopic
}
