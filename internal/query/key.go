package query

import (
	"encoding/json"
	"fmt"
)

// Tag names an entity family a query depends on. Invalidating a tag marks
// every cached query that declared it.
type Tag string

const (
	TagOrganizations Tag = "organizations"
	TagUsers         Tag = "users"
	TagMemberships   Tag = "memberships"
	TagCourses       Tag = "courses"
	TagVideos        Tag = "videos"
	TagEnrollments   Tag = "enrollments"
	TagProgress      Tag = "progress"
	TagDashboard     Tag = "dashboard"
)

// Key addresses one cache entry: an operation name plus its parameters in
// canonical JSON form, so structurally equal parameters share an entry.
type Key struct {
	Op     string
	Params string
}

// NewKey builds a Key. encoding/json orders map keys, which keeps
// parameter maps canonical.
func NewKey(op string, params interface{}) Key {
	if params == nil {
		return Key{Op: op}
	}
	b, err := json.Marshal(params)
	if err != nil {
		return Key{Op: op, Params: fmt.Sprintf("%#v", params)}
	}
	return Key{Op: op, Params: string(b)}
}

func (k Key) String() string {
	if k.Params == "" {
		return k.Op
	}
	return k.Op + " " + k.Params
}
