package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"melodybot/internal/domain"
	"melodybot/internal/repository/kv"
	"melodybot/internal/storage/memory"
	"melodybot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const validFile = `
items:
  - id: 1
    media_ref: CQACAgIAAxkBAAIBY2Zk
    right_answer: Bohemian Rhapsody
    wrong_answers: [Hotel California, Stairway to Heaven, Imagine]
  - id: 2
    media_ref: CQACAgIAAxkBAAIBZGZk
    right_answer: Yesterday
    wrong_answers:
      - Let It Be
      - Hey Jude
      - Help!
`

func TestParse(t *testing.T) {
	items, err := Parse(strings.NewReader(validFile))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, &domain.QuizItem{
		ID:           1,
		MediaRef:     "CQACAgIAAxkBAAIBY2Zk",
		RightAnswer:  "Bohemian Rhapsody",
		WrongAnswers: [3]string{"Hotel California", "Stairway to Heaven", "Imagine"},
	}, items[0])
	assert.Equal(t, "Help!", items[1].WrongAnswers[2])
}

func TestParse_Empty(t *testing.T) {
	items, err := Parse(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{
			name: "too few wrong answers",
			content: `
items:
  - id: 1
    media_ref: a
    right_answer: X
    wrong_answers: [Y, Z]
`,
			contains: "want 3 wrong answers",
		},
		{
			name: "wrong answer repeats right answer",
			content: `
items:
  - id: 1
    media_ref: a
    right_answer: X
    wrong_answers: [Y, X, Z]
`,
			contains: "duplicated",
		},
		{
			name: "duplicate id",
			content: `
items:
  - {id: 4, media_ref: a, right_answer: X, wrong_answers: [A, B, C]}
  - {id: 4, media_ref: b, right_answer: Y, wrong_answers: [A, B, C]}
`,
			contains: "duplicate id 4",
		},
		{
			name: "unknown key",
			content: `
items:
  - {id: 1, media: a, right_answer: X, wrong_answers: [A, B, C]}
`,
			contains: "media",
		},
		{
			name:     "not yaml",
			content:  "items: [",
			contains: "parse catalog file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := Parse(strings.NewReader(tt.content))
			assert.Error(t, err)
			assert.Nil(t, items)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	items, err := Parse(strings.NewReader(validFile))
	require.NoError(t, err)

	repo := kv.NewCatalogRepo(memory.NewStore(), 1)
	n, err := Import(ctx, repo, items, testutil.NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ids, err := repo.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, ids)
}

func TestImport_StopsOnFailure(t *testing.T) {
	repo := new(testutil.MockCatalogRepository)
	first := testutil.NewTestItem(1, "A")
	second := testutil.NewTestItem(2, "B")
	repo.On("PutItem", mock.Anything, first).Return(nil)
	repo.On("PutItem", mock.Anything, second).Return(errors.New("disk full"))

	n, err := Import(context.Background(), repo, []*domain.QuizItem{first, second}, testutil.NewTestLogger())

	assert.Error(t, err)
	assert.Equal(t, 1, n)
	repo.AssertExpectations(t)
}
