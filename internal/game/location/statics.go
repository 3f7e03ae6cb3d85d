package location

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ParseGroupMetadata parses a statics document. Groups keep their document order.
//
// Precondition: data must be a JSON object with optional "containersGroups" and
// "containers" members.
// Postcondition: Returns metadata with a non-nil Membership map, or a non-nil error.
func ParseGroupMetadata(data []byte) (*GroupMetadata, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("parsing statics: invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, errors.New("parsing statics: document must be an object")
	}

	meta := &GroupMetadata{Membership: make(map[string]string)}
	var parseErr error
	doc.Get("containersGroups").ForEach(func(key, value gjson.Result) bool {
		g := GroupSettings{
			ID:            key.String(),
			MinContainers: int(value.Get("minContainers").Int()),
			MaxContainers: int(value.Get("maxContainers").Int()),
		}
		if g.MinContainers < 0 || g.MaxContainers < g.MinContainers {
			parseErr = fmt.Errorf("parsing statics: group %q has invalid bounds [%d, %d]",
				g.ID, g.MinContainers, g.MaxContainers)
			return false
		}
		meta.Groups = append(meta.Groups, g)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	doc.Get("containers").ForEach(func(key, value gjson.Result) bool {
		meta.Membership[key.String()] = value.Get("groupId").String()
		return true
	})
	return meta, nil
}
