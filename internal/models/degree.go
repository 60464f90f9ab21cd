package models

import (
	"fmt"
	"strings"
)

// DegreeLevel orders academic qualifications. The zero value is DegreeUnspecified.
type DegreeLevel int

const (
	DegreeUnspecified DegreeLevel = iota
	DegreeCertificate
	DegreeDiploma
	DegreeAssociate
	DegreeBachelor
	DegreeMaster
	DegreeDoctorate
)

var degreeNames = [...]string{
	DegreeUnspecified: "unspecified",
	DegreeCertificate: "certificate",
	DegreeDiploma:     "diploma",
	DegreeAssociate:   "associate",
	DegreeBachelor:    "bachelor",
	DegreeMaster:      "master",
	DegreeDoctorate:   "doctorate",
}

func (d DegreeLevel) String() string {
	if d < 0 || int(d) >= len(degreeNames) {
		return degreeNames[DegreeUnspecified]
	}
	return degreeNames[d]
}

// ParseDegreeLevel is the inverse of String.
func ParseDegreeLevel(s string) (DegreeLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DegreeUnspecified, nil
	}
	for i, name := range degreeNames {
		if name == s {
			return DegreeLevel(i), nil
		}
	}
	return DegreeUnspecified, fmt.Errorf("unknown degree level %q", s)
}

func (d DegreeLevel) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DegreeLevel) UnmarshalText(b []byte) error {
	lvl, err := ParseDegreeLevel(string(b))
	if err != nil {
		return err
	}
	*d = lvl
	return nil
}
