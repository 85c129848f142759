package graph

import (
	"errors"
	"testing"
	"time"

	"questflow/services/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNodeOnePositionPerQuestAndUser(t *testing.T) {
	db := testutil.NewTestDB(t, &Node{})

	require.NoError(t, db.Create(&Node{
		ID:        "n1",
		CreatedAt: time.Now(),
		QuestID:   "q1",
		UserID:    "alice",
	}).Error)

	// A second node for the same user in the same quest must be refused by
	// the store, not just by a read-before-insert check.
	err := db.Create(&Node{
		ID:        "n2",
		CreatedAt: time.Now(),
		QuestID:   "q1",
		UserID:    "alice",
	}).Error
	require.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	// The same user in another quest is a distinct position.
	require.NoError(t, db.Create(&Node{
		ID:        "n3",
		CreatedAt: time.Now(),
		QuestID:   "q2",
		UserID:    "alice",
	}).Error)
}

func TestNodeViewLinkConsumedOnce(t *testing.T) {
	db := testutil.NewTestDB(t, &Node{})

	link := "l1"
	require.NoError(t, db.Create(&Node{
		ID:         "n1",
		CreatedAt:  time.Now(),
		QuestID:    "q1",
		UserID:     "alice",
		ViewLinkID: &link,
	}).Error)

	err := db.Create(&Node{
		ID:         "n2",
		CreatedAt:  time.Now(),
		QuestID:    "q1",
		UserID:     "bob",
		ViewLinkID: &link,
	}).Error
	require.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}
