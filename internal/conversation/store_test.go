package conversation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

func TestAppendAndHistory(t *testing.T) {
	s := NewStore(10, time.Hour)

	s.Append("s1", domain.Message{Role: domain.RoleUser, Content: "what is revenue?"})
	s.Append("s1", domain.Message{Role: domain.RoleAssistant, Content: "revenue is income."})

	history := s.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, "revenue is income.", history[1].Content)

	assert.Empty(t, s.History("unknown"))
}

func TestHistoryBounded(t *testing.T) {
	s := NewStore(3, time.Hour)

	for i := 0; i < 5; i++ {
		s.Append("s1", domain.Message{Role: domain.RoleUser, Content: fmt.Sprintf("m%d", i)})
	}

	history := s.History("s1")
	require.Len(t, history, 3)
	assert.Equal(t, "m2", history[0].Content)
	assert.Equal(t, "m4", history[2].Content)
}

func TestSummaryFormat(t *testing.T) {
	s := NewStore(10, time.Hour)
	s.Append("s1", domain.Message{Role: domain.RoleUser, Content: "hello"})
	s.Append("s1", domain.Message{Role: domain.RoleAssistant, Content: "hi there"})

	assert.Equal(t, "Human: hello\nAI: hi there", s.Summary("s1"))
	assert.Empty(t, s.Summary("unknown"))
}

func TestClear(t *testing.T) {
	s := NewStore(10, time.Hour)
	s.Append("s1", domain.Message{Role: domain.RoleUser, Content: "hello"})

	assert.True(t, s.Clear("s1"))
	assert.Empty(t, s.History("s1"))
	assert.False(t, s.Clear("s1"))
}

func TestPruneDropsStaleSessions(t *testing.T) {
	s := NewStore(10, 30*time.Millisecond)

	s.Append("old", domain.Message{Role: domain.RoleUser, Content: "first"})
	time.Sleep(50 * time.Millisecond)
	s.Append("fresh", domain.Message{Role: domain.RoleUser, Content: "second"})

	// The old session goes even though it has recent capacity left; age
	// is measured from its oldest message.
	removed := s.Prune()
	assert.Equal(t, 1, removed)
	assert.Empty(t, s.History("old"))
	require.Len(t, s.History("fresh"), 1)
	assert.Equal(t, 1, s.Len())
}
