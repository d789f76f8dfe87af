package reaper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchers(t *testing.T) {
	for _, test := range []struct {
		name    string
		matcher Matcher
		resName string
		tags    map[string]string
		want    bool
	}{
		{
			name:    "tag-match",
			matcher: TagMatcher{Key: "Project", Value: "demo"},
			tags:    map[string]string{"Project": "demo"},
			want:    true,
		},
		{
			name:    "tag-value-mismatch",
			matcher: TagMatcher{Key: "Project", Value: "demo"},
			tags:    map[string]string{"Project": "other"},
			want:    false,
		},
		{
			name:    "tag-missing",
			matcher: TagMatcher{Key: "Project", Value: "demo"},
			tags:    map[string]string{"Name": "demo"},
			want:    false,
		},
		{
			name:    "tag-nil-tags",
			matcher: TagMatcher{Key: "Project", Value: "demo"},
			want:    false,
		},
		{
			name:    "prefix-match",
			matcher: PrefixMatcher{Prefix: "demo-"},
			resName: "demo-key",
			want:    true,
		},
		{
			name:    "prefix-mismatch",
			matcher: PrefixMatcher{Prefix: "demo-"},
			resName: "other-key",
			want:    false,
		},
		{
			name:    "prefix-is-not-substring",
			matcher: PrefixMatcher{Prefix: "demo-"},
			resName: "my-demo-key",
			want:    false,
		},
		{
			name: "any-matches-on-first",
			matcher: AnyMatcher{
				TagMatcher{Key: "Project", Value: "demo"},
				PrefixMatcher{Prefix: "demo-"},
			},
			resName: "something",
			tags:    map[string]string{"Project": "demo"},
			want:    true,
		},
		{
			name: "any-matches-on-second",
			matcher: AnyMatcher{
				TagMatcher{Key: "Project", Value: "demo"},
				PrefixMatcher{Prefix: "demo-"},
			},
			resName: "demo-bucket",
			want:    true,
		},
		{
			name: "any-matches-none",
			matcher: AnyMatcher{
				TagMatcher{Key: "Project", Value: "demo"},
				PrefixMatcher{Prefix: "demo-"},
			},
			resName: "other-bucket",
			tags:    map[string]string{"Project": "other"},
			want:    false,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, test.matcher.Matches(test.resName, test.tags))
		})
	}
}
