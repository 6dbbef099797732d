package models

import (
	"fmt"
	"strings"
)

// AnnotationBy selects what labels an annotation column.
type AnnotationBy string

const (
	// AnnotateByName labels hits with the reference interval's own name.
	AnnotateByName AnnotationBy = "NAME"
	// AnnotateBySource labels hits with the entry's fixed source string.
	AnnotateBySource AnnotationBy = "SOURCE"
)

// DistanceAnchor is the point of a reference interval used for matching.
type DistanceAnchor string

const (
	AnchorStart  DistanceAnchor = "START"
	AnchorEnd    DistanceAnchor = "END"
	AnchorMid    DistanceAnchor = "MID"
	AnchorRegion DistanceAnchor = "REGION"
)

// HitSelection controls how many hits per base interval are kept.
type HitSelection string

const (
	HitsAll     HitSelection = "ALL"
	HitsClosest HitSelection = "CLOSEST"
)

// Valid reports whether a is a known annotation mode.
func (a AnnotationBy) Valid() bool {
	return a == AnnotateByName || a == AnnotateBySource
}

// Valid reports whether d is a known anchor.
func (d DistanceAnchor) Valid() bool {
	switch d {
	case AnchorStart, AnchorEnd, AnchorMid, AnchorRegion:
		return true
	}
	return false
}

// Valid reports whether h is a known selection policy.
func (h HitSelection) Valid() bool {
	return h == HitsAll || h == HitsClosest
}

// ParseAnnotationBy parses a case-insensitive ANNOTATION.BY value.
func ParseAnnotationBy(s string) (AnnotationBy, error) {
	v := AnnotationBy(normalize(s))
	if !v.Valid() {
		return "", fmt.Errorf("invalid annotation mode %q (want NAME or SOURCE)", s)
	}
	return v, nil
}

// ParseDistanceAnchor parses a case-insensitive DISTANCE.TO value.
func ParseDistanceAnchor(s string) (DistanceAnchor, error) {
	v := DistanceAnchor(normalize(s))
	if !v.Valid() {
		return "", fmt.Errorf("invalid distance anchor %q (want START, END, MID or REGION)", s)
	}
	return v, nil
}

// ParseHitSelection parses a case-insensitive N.HITS value.
func ParseHitSelection(s string) (HitSelection, error) {
	v := HitSelection(normalize(s))
	if !v.Valid() {
		return "", fmt.Errorf("invalid hit selection %q (want ALL or CLOSEST)", s)
	}
	return v, nil
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
