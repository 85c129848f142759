package lifecycle

import (
	"context"
	"testing"
	"time"

	"questflow/pkg/errutil"
	"questflow/services/answer"
	"questflow/services/event"
	"questflow/services/graph"
	"questflow/services/quest"
	"questflow/services/reward"
	"questflow/services/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t,
		&quest.Quest{},
		&graph.Node{},
		&graph.Link{},
		&answer.ProposedAnswer{},
		&event.Event{},
		&reward.Share{},
	)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParams{DB: db, Node: node}), db
}

func initialLink(t *testing.T, db *gorm.DB, questID string) *graph.Link {
	t.Helper()

	var link graph.Link
	require.NoError(t, db.Where(&graph.Link{QuestID: questID}).First(&link).Error)
	return &link
}

// join consumes a fresh link issued by issuerID so userID lands under them.
func join(t *testing.T, svc *Service, questID, issuerID, userID string) *graph.Node {
	t.Helper()
	ctx := context.Background()

	link, err := svc.IssueLink(ctx, IssueLinkRequest{QuestID: questID, UserID: issuerID})
	require.NoError(t, err)

	node, err := svc.Reflow(ctx, ReflowRequest{LinkCode: link.LinkCode, UserID: userID})
	require.NoError(t, err)
	return node
}

func TestCreateQuest(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	due := time.Now().Add(72 * time.Hour)
	q, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Type:         "job_referral",
		Title:        "Looking for a Staff SRE",
		Description:  "Remote, infra-heavy role.",
		RewardAmount: 1000,
		SeekerID:     "seeker",
		DueDate:      &due,
	})
	require.NoError(t, err)
	require.Equal(t, quest.Active, q.Status)
	require.Equal(t, "seeker", q.CreatorID)
	require.NotEmpty(t, q.RootNodeID)
	require.Equal(t, "looking-for-a-staff-sre", q.ShareTitle)

	var root graph.Node
	require.NoError(t, db.Where(&graph.Node{ID: q.RootNodeID}).First(&root).Error)
	require.Equal(t, "seeker", root.UserID)
	require.Nil(t, root.ParentID)

	link := initialLink(t, db, q.ID)
	require.Equal(t, q.RootNodeID, link.OwnerNodeID)
	require.Equal(t, graph.Broadcast, link.Type)
	require.NotEmpty(t, link.LinkCode)

	history, err := svc.History(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, event.NodeJoined, history[0].Type)
	require.Equal(t, q.RootNodeID, history[0].NodeID)
}

func TestCreateQuest_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateQuest(ctx, CreateQuestRequest{SeekerID: "seeker"})
	require.True(t, errutil.Is(err, errutil.StatusValidationFailed))

	_, err = svc.CreateQuest(ctx, CreateQuestRequest{Title: "t", SeekerID: "seeker", RewardAmount: -1})
	require.True(t, errutil.Is(err, errutil.StatusValidationFailed))

	_, err = svc.CreateQuest(ctx, CreateQuestRequest{Title: "t"})
	require.True(t, errutil.Is(err, errutil.StatusUnauthorized))
}

func TestCreateQuest_RollsBackOnPartialFailure(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	// With the links table gone the third step fails, which must unwind the
	// quest and root node writes that already landed.
	require.NoError(t, db.Migrator().DropTable(&graph.Link{}))

	_, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "doomed",
		RewardAmount: 100,
		SeekerID:     "seeker",
	})
	require.Error(t, err)

	var questCount, nodeCount int64
	require.NoError(t, db.Model(&quest.Quest{}).Count(&questCount).Error)
	require.NoError(t, db.Model(&graph.Node{}).Count(&nodeCount).Error)
	require.Zero(t, questCount)
	require.Zero(t, nodeCount)
}

func TestReflow(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "quest",
		RewardAmount: 1000,
		SeekerID:     "seeker",
	})
	require.NoError(t, err)

	link := initialLink(t, db, q.ID)

	node, err := svc.Reflow(ctx, ReflowRequest{LinkCode: link.LinkCode, UserID: "alice"})
	require.NoError(t, err)
	require.Equal(t, "alice", node.UserID)
	require.NotNil(t, node.ParentID)
	require.Equal(t, q.RootNodeID, *node.ParentID)
	require.NotNil(t, node.ViewLinkID)
	require.Equal(t, link.ID, *node.ViewLinkID)

	history, err := svc.History(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, event.NodeJoined, history[1].Type)
	require.Equal(t, event.Reflow, history[2].Type)
}

func TestReflow_OwnLink(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "quest",
		RewardAmount: 1000,
		SeekerID:     "seeker",
	})
	require.NoError(t, err)

	link := initialLink(t, db, q.ID)

	_, err = svc.Reflow(ctx, ReflowRequest{LinkCode: link.LinkCode, UserID: "seeker"})
	require.True(t, errutil.Is(err, errutil.StatusPreconditionFailed))
}

func TestReflow_RepeatJoinReturnsExistingNode(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "quest",
		RewardAmount: 1000,
		SeekerID:     "seeker",
	})
	require.NoError(t, err)

	link := initialLink(t, db, q.ID)

	first, err := svc.Reflow(ctx, ReflowRequest{LinkCode: link.LinkCode, UserID: "alice"})
	require.NoError(t, err)

	// Joining again through a different link lands on the same position.
	second, err := svc.IssueLink(ctx, IssueLinkRequest{QuestID: q.ID, UserID: "seeker"})
	require.NoError(t, err)

	again, err := svc.Reflow(ctx, ReflowRequest{LinkCode: second.LinkCode, UserID: "alice"})
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)
}

func TestReflow_LinkConsumedOnce(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "quest",
		RewardAmount: 1000,
		SeekerID:     "seeker",
	})
	require.NoError(t, err)

	link := initialLink(t, db, q.ID)

	_, err = svc.Reflow(ctx, ReflowRequest{LinkCode: link.LinkCode, UserID: "alice"})
	require.NoError(t, err)

	_, err = svc.Reflow(ctx, ReflowRequest{LinkCode: link.LinkCode, UserID: "bob"})
	require.True(t, errutil.Is(err, errutil.StatusConstraintViolation))
}

func TestIssueLink(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "quest",
		RewardAmount: 1000,
		SeekerID:     "seeker",
	})
	require.NoError(t, err)

	strength := 3
	link, err := svc.IssueLink(ctx, IssueLinkRequest{
		QuestID:              q.ID,
		UserID:               "seeker",
		Type:                 graph.Targeted,
		Name:                 "for-an-old-colleague",
		RelationshipStrength: &strength,
	})
	require.NoError(t, err)
	require.Equal(t, graph.Targeted, link.Type)
	require.Equal(t, 3, *link.RelationshipStrength)

	// Non-participants cannot mint invitations.
	_, err = svc.IssueLink(ctx, IssueLinkRequest{QuestID: q.ID, UserID: "stranger"})
	require.True(t, errutil.Is(err, errutil.StatusPreconditionFailed))

	// Strength is a targeted-link attribute with a bounded scale.
	bad := 9
	_, err = svc.IssueLink(ctx, IssueLinkRequest{
		QuestID:              q.ID,
		UserID:               "seeker",
		Type:                 graph.Targeted,
		RelationshipStrength: &bad,
	})
	require.True(t, errutil.Is(err, errutil.StatusValidationFailed))
}

func TestAcceptAnswer_EndToEnd(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "quest",
		RewardAmount: 1000,
		SeekerID:     "seeker",
	})
	require.NoError(t, err)

	// Build the chain seeker -> alice -> bob -> carol.
	link := initialLink(t, db, q.ID)
	_, err = svc.Reflow(ctx, ReflowRequest{LinkCode: link.LinkCode, UserID: "alice"})
	require.NoError(t, err)
	join(t, svc, q.ID, "alice", "bob")
	carol := join(t, svc, q.ID, "bob", "carol")

	pa, err := svc.ProposeAnswer(ctx, ProposeAnswerRequest{
		QuestID: q.ID,
		UserID:  "carol",
		Content: "I know exactly the right person.",
	})
	require.NoError(t, err)
	require.Equal(t, answer.Pending, pa.Status)

	accepted, allocations, err := svc.AcceptAnswer(ctx, AcceptAnswerRequest{
		ProposedAnswerID: pa.ID,
		ActorUserID:      "seeker",
	})
	require.NoError(t, err)
	require.Equal(t, answer.Accepted, accepted.Status)
	require.NotNil(t, accepted.DecidedAt)

	// Winner takes half, each hop up takes half of the rest, root absorbs the
	// remainder: 500 / 250 / 125 / 125.
	require.Len(t, allocations, 4)
	byUser := map[string]int64{}
	var sum int64
	for _, alloc := range allocations {
		byUser[alloc.Node.UserID] = alloc.Amount
		sum += alloc.Amount
	}
	require.Equal(t, int64(1000), sum)
	require.Equal(t, int64(500), byUser["carol"])
	require.Equal(t, int64(250), byUser["bob"])
	require.Equal(t, int64(125), byUser["alice"])
	require.Equal(t, int64(125), byUser["seeker"])

	shares, err := svc.Shares(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, shares, 4)

	got, err := svc.GetQuest(ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, quest.Finished, got.Status)

	var winner graph.Node
	require.NoError(t, db.Where(&graph.Node{ID: carol.ID}).First(&winner).Error)
	require.Equal(t, graph.Accepted, winner.Status)

	// The quest no longer accepts answers or joins.
	_, err = svc.ProposeAnswer(ctx, ProposeAnswerRequest{QuestID: q.ID, UserID: "bob"})
	require.True(t, errutil.Is(err, errutil.StatusPreconditionFailed))
}

func TestAcceptAnswer_ThreeNodeChain(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "quest",
		RewardAmount: 1000,
		SeekerID:     "ann",
	})
	require.NoError(t, err)

	link := initialLink(t, db, q.ID)
	_, err = svc.Reflow(ctx, ReflowRequest{LinkCode: link.LinkCode, UserID: "ben"})
	require.NoError(t, err)
	join(t, svc, q.ID, "ben", "cam")

	pa, err := svc.ProposeAnswer(ctx, ProposeAnswerRequest{QuestID: q.ID, UserID: "cam"})
	require.NoError(t, err)

	_, allocations, err := svc.AcceptAnswer(ctx, AcceptAnswerRequest{
		ProposedAnswerID: pa.ID,
		ActorUserID:      "ann",
	})
	require.NoError(t, err)

	byUser := map[string]int64{}
	for _, alloc := range allocations {
		byUser[alloc.Node.UserID] = alloc.Amount
	}
	require.Equal(t, int64(500), byUser["cam"])
	require.Equal(t, int64(250), byUser["ben"])
	require.Equal(t, int64(250), byUser["ann"])
}

func TestAcceptAnswer_OnlySeeker(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "quest",
		RewardAmount: 1000,
		SeekerID:     "seeker",
	})
	require.NoError(t, err)

	link := initialLink(t, db, q.ID)
	_, err = svc.Reflow(ctx, ReflowRequest{LinkCode: link.LinkCode, UserID: "alice"})
	require.NoError(t, err)

	pa, err := svc.ProposeAnswer(ctx, ProposeAnswerRequest{QuestID: q.ID, UserID: "alice"})
	require.NoError(t, err)

	_, _, err = svc.AcceptAnswer(ctx, AcceptAnswerRequest{ProposedAnswerID: pa.ID, ActorUserID: "alice"})
	require.True(t, errutil.Is(err, errutil.StatusPreconditionFailed))
}

func TestAcceptAnswer_ConcurrentAcceptsSettleOnOne(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "quest",
		RewardAmount: 1000,
		SeekerID:     "seeker",
	})
	require.NoError(t, err)

	link := initialLink(t, db, q.ID)
	_, err = svc.Reflow(ctx, ReflowRequest{LinkCode: link.LinkCode, UserID: "alice"})
	require.NoError(t, err)
	join(t, svc, q.ID, "alice", "bob")

	paA, err := svc.ProposeAnswer(ctx, ProposeAnswerRequest{QuestID: q.ID, UserID: "alice"})
	require.NoError(t, err)
	paB, err := svc.ProposeAnswer(ctx, ProposeAnswerRequest{QuestID: q.ID, UserID: "bob"})
	require.NoError(t, err)

	results := make([]error, 2)
	var g errgroup.Group
	for i, id := range []string{paA.ID, paB.ID} {
		i, id := i, id
		g.Go(func() error {
			_, _, err := svc.AcceptAnswer(ctx, AcceptAnswerRequest{
				ProposedAnswerID: id,
				ActorUserID:      "seeker",
			})
			results[i] = err
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var succeeded int
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.True(t,
			errutil.Is(err, errutil.StatusConstraintViolation) ||
				errutil.Is(err, errutil.StatusPreconditionFailed),
			"loser must fail with a typed arbitration error, got %v", err)
	}
	require.Equal(t, 1, succeeded)

	var acceptedCount int64
	require.NoError(t, db.Model(&answer.ProposedAnswer{}).
		Where("status = ?", answer.Accepted).Count(&acceptedCount).Error)
	require.Equal(t, int64(1), acceptedCount)
}

func TestRejectAnswer(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "quest",
		RewardAmount: 1000,
		SeekerID:     "seeker",
	})
	require.NoError(t, err)

	link := initialLink(t, db, q.ID)
	_, err = svc.Reflow(ctx, ReflowRequest{LinkCode: link.LinkCode, UserID: "alice"})
	require.NoError(t, err)

	pa, err := svc.ProposeAnswer(ctx, ProposeAnswerRequest{QuestID: q.ID, UserID: "alice"})
	require.NoError(t, err)

	rejected, err := svc.RejectAnswer(ctx, RejectAnswerRequest{ProposedAnswerID: pa.ID, ActorUserID: "seeker"})
	require.NoError(t, err)
	require.Equal(t, answer.Rejected, rejected.Status)
	require.NotNil(t, rejected.DecidedAt)

	// Rejection is final for that proposal.
	_, err = svc.RejectAnswer(ctx, RejectAnswerRequest{ProposedAnswerID: pa.ID, ActorUserID: "seeker"})
	require.True(t, errutil.Is(err, errutil.StatusPreconditionFailed))

	// The quest stays open; alice can propose again.
	_, err = svc.ProposeAnswer(ctx, ProposeAnswerRequest{QuestID: q.ID, UserID: "alice"})
	require.NoError(t, err)
}

func TestTerminate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "quest",
		RewardAmount: 1000,
		SeekerID:     "seeker",
	})
	require.NoError(t, err)

	err = svc.Terminate(ctx, TerminateRequest{QuestID: q.ID, ActorUserID: "stranger", Reason: "nope"})
	require.True(t, errutil.Is(err, errutil.StatusPreconditionFailed))

	require.NoError(t, svc.Terminate(ctx, TerminateRequest{QuestID: q.ID, ActorUserID: "seeker", Reason: "filled elsewhere"}))

	got, err := svc.GetQuest(ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, quest.Terminated, got.Status)
	require.Equal(t, "filled elsewhere", got.TerminationReason)

	err = svc.Terminate(ctx, TerminateRequest{QuestID: q.ID, ActorUserID: "seeker"})
	require.True(t, errutil.Is(err, errutil.StatusPreconditionFailed))
}

func TestExpireDue(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	due := time.Now().Add(-time.Hour)
	q, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "quest",
		RewardAmount: 1000,
		SeekerID:     "seeker",
		DueDate:      &due,
	})
	require.NoError(t, err)

	require.NoError(t, svc.ExpireDue(ctx, q.ID, time.Now()))

	got, err := svc.GetQuest(ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, quest.Terminated, got.Status)
	require.Equal(t, "expired", got.TerminationReason)

	// Re-running the sweep is a no-op, not a duplicate event.
	require.NoError(t, svc.ExpireDue(ctx, q.ID, time.Now()))

	history, err := svc.History(ctx, q.ID)
	require.NoError(t, err)
	var expiredEvents int
	for _, e := range history {
		if e.Type == event.QuestExpired {
			expiredEvents++
		}
	}
	require.Equal(t, 1, expiredEvents)
}

func TestExpireDue_NotYetDue(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	due := time.Now().Add(time.Hour)
	q, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "quest",
		RewardAmount: 1000,
		SeekerID:     "seeker",
		DueDate:      &due,
	})
	require.NoError(t, err)

	err = svc.ExpireDue(ctx, q.ID, time.Now())
	require.True(t, errutil.Is(err, errutil.StatusPreconditionFailed))

	got, err := svc.GetQuest(ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, quest.Active, got.Status)
}

func TestEditQuest(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "quest",
		RewardAmount: 1000,
		SeekerID:     "seeker",
	})
	require.NoError(t, err)

	title := "A Better Title"
	edited, err := svc.EditQuest(ctx, EditQuestRequest{
		QuestID:     q.ID,
		ActorUserID: "seeker",
		Title:       &title,
	})
	require.NoError(t, err)
	require.Equal(t, "A Better Title", edited.Title)
	require.Equal(t, "a-better-title", edited.ShareTitle)

	_, err = svc.EditQuest(ctx, EditQuestRequest{QuestID: q.ID, ActorUserID: "stranger", Title: &title})
	require.True(t, errutil.Is(err, errutil.StatusPreconditionFailed))

	history, err := svc.History(ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, event.QuestEdited, history[len(history)-1].Type)
}

func TestAddComment(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "quest",
		RewardAmount: 1000,
		SeekerID:     "seeker",
	})
	require.NoError(t, err)

	link := initialLink(t, db, q.ID)
	_, err = svc.Reflow(ctx, ReflowRequest{LinkCode: link.LinkCode, UserID: "alice"})
	require.NoError(t, err)

	require.NoError(t, svc.AddComment(ctx, AddCommentRequest{QuestID: q.ID, UserID: "alice", CommentID: "c-1"}))

	err = svc.AddComment(ctx, AddCommentRequest{QuestID: q.ID, UserID: "stranger", CommentID: "c-2"})
	require.True(t, errutil.Is(err, errutil.StatusPreconditionFailed))

	history, err := svc.History(ctx, q.ID)
	require.NoError(t, err)
	last := history[len(history)-1]
	require.Equal(t, event.CommentAdded, last.Type)
	require.Equal(t, "c-1", last.CommentID)
}

func TestListQuests(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.CreateQuest(ctx, CreateQuestRequest{
			Title:        "quest",
			RewardAmount: 100,
			SeekerID:     "seeker",
		})
		require.NoError(t, err)
	}
	_, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "other",
		RewardAmount: 100,
		SeekerID:     "someone-else",
	})
	require.NoError(t, err)

	page1, info, err := svc.ListQuests(ctx, ListQuestsRequest{SeekerID: "seeker", Limit: 3})
	require.NoError(t, err)
	require.Len(t, page1, 3)
	require.True(t, info.HasMore)
	require.NotEmpty(t, info.NextCursor)

	page2, info, err := svc.ListQuests(ctx, ListQuestsRequest{
		SeekerID: "seeker",
		Limit:    3,
		Cursor:   info.NextCursor,
	})
	require.NoError(t, err)
	require.Len(t, page2, 2)
	require.False(t, info.HasMore)

	// Pages never overlap.
	seen := map[string]bool{}
	for _, q := range append(page1, page2...) {
		require.False(t, seen[q.ID])
		seen[q.ID] = true
	}

	_, _, err = svc.ListQuests(ctx, ListQuestsRequest{Cursor: "%%%not-base64%%%"})
	require.True(t, errutil.Is(err, errutil.StatusBadRequest))
}

func TestGetQuestForLink(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "quest",
		RewardAmount: 1000,
		SeekerID:     "seeker",
	})
	require.NoError(t, err)

	link := initialLink(t, db, q.ID)

	got, gotLink, err := svc.GetQuestForLink(ctx, link.LinkCode)
	require.NoError(t, err)
	require.Equal(t, q.ID, got.ID)
	require.Equal(t, link.ID, gotLink.ID)

	_, _, err = svc.GetQuestForLink(ctx, "no-such-code")
	require.True(t, errutil.Is(err, errutil.StatusNotFound))
}

type denyingVerifier struct{}

func (denyingVerifier) VerifyLinkAccess(_ context.Context, _ *graph.Link) (bool, error) {
	return false, nil
}

func TestGetQuestForLink_TargetedDenied(t *testing.T) {
	db := testutil.NewTestDB(t,
		&quest.Quest{},
		&graph.Node{},
		&graph.Link{},
		&answer.ProposedAnswer{},
		&event.Event{},
		&reward.Share{},
	)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParams{DB: db, Node: node, Verifier: denyingVerifier{}})
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "quest",
		RewardAmount: 1000,
		SeekerID:     "seeker",
	})
	require.NoError(t, err)

	targeted, err := svc.IssueLink(ctx, IssueLinkRequest{
		QuestID: q.ID,
		UserID:  "seeker",
		Type:    graph.Targeted,
	})
	require.NoError(t, err)

	// The external verifier gates targeted links only.
	_, _, err = svc.GetQuestForLink(ctx, targeted.LinkCode)
	require.True(t, errutil.Is(err, errutil.StatusForbidden))

	broadcast := initialLink(t, db, q.ID)
	got, _, err := svc.GetQuestForLink(ctx, broadcast.LinkCode)
	require.NoError(t, err)
	require.Equal(t, q.ID, got.ID)
}

func TestBranch(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestRequest{
		Title:        "quest",
		RewardAmount: 1000,
		SeekerID:     "seeker",
	})
	require.NoError(t, err)

	link := initialLink(t, db, q.ID)
	_, err = svc.Reflow(ctx, ReflowRequest{LinkCode: link.LinkCode, UserID: "alice"})
	require.NoError(t, err)
	join(t, svc, q.ID, "alice", "bob")
	join(t, svc, q.ID, "bob", "carol")

	view, err := svc.Branch(ctx, q.ID, "alice")
	require.NoError(t, err)

	require.Len(t, view.Ancestors, 2)
	require.Equal(t, "seeker", view.Ancestors[0].UserID)
	require.Equal(t, "alice", view.Ancestors[1].UserID)

	require.Len(t, view.Descendants, 2)
	require.Equal(t, "bob", view.Descendants[0].Node.UserID)
	require.Equal(t, 1, view.Descendants[0].Depth)
	require.Equal(t, "carol", view.Descendants[1].Node.UserID)
	require.Equal(t, 2, view.Descendants[1].Depth)
}
