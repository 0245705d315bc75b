package parts

import (
	"fmt"
	"strings"

	"github.com/harmonia-mir/harmonia/score"
)

// Role identifies the instrument family a part plays in the analysis
type Role string

const (
	RoleGuitar  Role = "guitar"
	RoleBass    Role = "bass"
	RoleDrums   Role = "drums"
	RoleVocals  Role = "vocals"
	RoleUnknown Role = "unknown"
)

// register cutoffs for parts whose declared name decides nothing
const (
	bassRegisterCeiling = 50.0
	guitarRegisterFloor = 60.0
)

// roleKeywords maps declared-name fragments to roles, in match order.
// Bass is checked before guitar so "bass guitar" classifies as bass.
var roleKeywords = []struct {
	role     Role
	keywords []string
}{
	{RoleBass, []string{"bass"}},
	{RoleGuitar, []string{"guitar", "gtr"}},
	{RoleDrums, []string{"drum", "percussion"}},
	{RoleVocals, []string{"vocal", "voice"}},
}

// Classify assigns an instrument role to a single part. A declared name
// containing a known instrument keyword wins; otherwise the mean MIDI
// register decides. Parts with no events classify as unknown.
func Classify(p score.Part) Role {
	name := strings.ToLower(p.Name)
	for _, group := range roleKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(name, kw) {
				return group.role
			}
		}
	}

	if p.EventCount() == 0 {
		return RoleUnknown
	}

	switch mean := p.MeanMIDI(); {
	case mean < bassRegisterCeiling:
		return RoleBass
	case mean > guitarRegisterFloor:
		return RoleGuitar
	}
	return RoleUnknown
}

// RoleKeys derives the result-map key for each classified part, in part
// order. Guitar parts are numbered guitar_1, guitar_2, ... whenever more
// than one is present; every other role keeps its bare name, so repeated
// non-guitar roles collide and the caller decides which part wins.
func RoleKeys(roles []Role) []string {
	guitars := 0
	for _, r := range roles {
		if r == RoleGuitar {
			guitars++
		}
	}

	keys := make([]string, len(roles))
	numbered := 0
	for i, r := range roles {
		if r == RoleGuitar && guitars > 1 {
			numbered++
			keys[i] = fmt.Sprintf("guitar_%d", numbered)
			continue
		}
		keys[i] = string(r)
	}
	return keys
}
