package lifecycle

import (
	"context"
	"encoding/json"
	"time"

	"questflow/internal/txn"
	"questflow/pkg/db/option"
	"questflow/pkg/db/pagination"
	"questflow/pkg/errutil"
	"questflow/pkg/linkcode"
	"questflow/pkg/rediskey"
	"questflow/pkg/repository"
	"questflow/services/answer"
	"questflow/services/event"
	"questflow/services/graph"
	"questflow/services/quest"
	"questflow/services/reward"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxLinkCodeAttempts = 5

// Service is the state machine over quests, nodes, links and proposed
// answers. Every public operation is request-scoped; concurrent callers are
// arbitrated by the store's uniqueness constraints, not by locks.
type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	quests  repository.Repository[quest.Quest]
	nodes   repository.Repository[graph.Node]
	links   repository.Repository[graph.Link]
	answers repository.Repository[answer.ProposedAnswer]
	shares  repository.Repository[reward.Share]

	traverser *graph.Traverser
	events    *event.Recorder
	verifier  LinkVerifier
	cache     *redis.Client
}

type ServiceParams struct {
	fx.In
	DB       *gorm.DB
	Node     *snowflake.Node
	Verifier LinkVerifier  `optional:"true"`
	Redis    *redis.Client `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	verifier := p.Verifier
	if verifier == nil {
		verifier = AllowAllVerifier{}
	}

	return &Service{
		db:   p.DB,
		node: p.Node,

		quests:  repository.ProvideStore[quest.Quest](p.DB),
		nodes:   repository.ProvideStore[graph.Node](p.DB),
		links:   repository.ProvideStore[graph.Link](p.DB),
		answers: repository.ProvideStore[answer.ProposedAnswer](p.DB),
		shares:  repository.ProvideStore[reward.Share](p.DB),

		traverser: graph.NewTraverser(p.DB),
		events:    event.NewRecorder(p.DB, p.Node),
		verifier:  verifier,
		cache:     p.Redis,
	}
}

func traceLog(ctx context.Context) *zap.Logger {
	span := trace.SpanFromContext(ctx)
	return zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
	)
}

// CreateQuest creates the quest, its root node and the initial viewing link,
// then activates the quest, as one logical operation. The backing store has
// no multi-round transactions for this dependent sequence, so the steps run
// through the compensating txn layer: a failure partway rolls completed steps
// back and leaves no orphaned root node or dangling link.
func (s *Service) CreateQuest(ctx context.Context, req CreateQuestRequest) (*quest.Quest, error) {
	log := traceLog(ctx)

	if req.Title == "" {
		return nil, errutil.ValidationFailed("title is required")
	}
	if req.SeekerID == "" {
		return nil, errutil.Unauthorized("seeker is required")
	}
	if req.RewardAmount < 0 {
		return nil, errutil.ValidationFailed("reward amount must not be negative")
	}

	creatorID := req.CreatorID
	if creatorID == "" {
		creatorID = req.SeekerID
	}

	questID := s.node.Generate().String()
	rootNodeID := s.node.Generate().String()

	q := &quest.Quest{
		ID:           questID,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
		Type:         req.Type,
		Title:        req.Title,
		ShareTitle:   slug.Make(req.Title),
		Description:  req.Description,
		RewardAmount: req.RewardAmount,
		CreatorID:    creatorID,
		SeekerID:     req.SeekerID,
		Status:       quest.Draft,
		DueDate:      req.DueDate,
		CoverMedia:   req.CoverMedia,
	}

	rootNode := &graph.Node{
		ID:        rootNodeID,
		CreatedAt: time.Now(),
		QuestID:   questID,
		UserID:    req.SeekerID,
	}

	link := &graph.Link{
		ID:          s.node.Generate().String(),
		CreatedAt:   time.Now(),
		QuestID:     questID,
		OwnerNodeID: rootNodeID,
		Type:        graph.Broadcast,
	}

	steps := []txn.Step{
		{
			Desc: "create quest",
			Run: func(ctx context.Context) error {
				return s.quests.Create(ctx, q)
			},
			Rollback: func(ctx context.Context) error {
				return s.quests.Delete(ctx, q.ID)
			},
		},
		{
			Desc: "create root node",
			Run: func(ctx context.Context) error {
				return s.nodes.Create(ctx, rootNode)
			},
			Rollback: func(ctx context.Context) error {
				return s.nodes.Delete(ctx, rootNode.ID)
			},
		},
		{
			Desc: "create initial link",
			Run: func(ctx context.Context) error {
				return s.createLinkWithFreshCode(ctx, nil, link)
			},
			Rollback: func(ctx context.Context) error {
				return s.links.Delete(ctx, link.ID)
			},
		},
		{
			Desc: "activate quest",
			Run: func(ctx context.Context) error {
				return s.quests.Update(ctx, q.ID, map[string]any{
					"status":       quest.Active,
					"root_node_id": rootNodeID,
					"updated_at":   time.Now(),
				})
			},
			Rollback: func(ctx context.Context) error {
				return s.quests.Update(ctx, q.ID, map[string]any{
					"status":       quest.Draft,
					"root_node_id": "",
				})
			},
		},
		{
			Desc: "record root join",
			Run: func(ctx context.Context) error {
				return s.events.Append(ctx, &event.Event{
					QuestID:     questID,
					ActorUserID: req.SeekerID,
					Type:        event.NodeJoined,
					NodeID:      rootNodeID,
				})
			},
		},
	}

	if err := txn.RunSteps(ctx, steps); err != nil {
		log.Error("quest creation failed", zap.String("quest_id", questID), zap.Error(err))
		return nil, err
	}

	q.Status = quest.Active
	q.RootNodeID = rootNodeID

	log.Info("quest created",
		zap.String("quest_id", questID),
		zap.String("seeker_id", req.SeekerID),
		zap.Int64("reward_amount", req.RewardAmount),
	)

	return q, nil
}

// createLinkWithFreshCode inserts the link, regenerating its code on a
// unique-index collision.
func (s *Service) createLinkWithFreshCode(ctx context.Context, tx *gorm.DB, link *graph.Link) error {
	links := s.links.WithTrx(tx)

	for attempt := 0; attempt < maxLinkCodeAttempts; attempt++ {
		code, err := linkcode.New()
		if err != nil {
			return err
		}
		link.LinkCode = code

		err = links.Create(ctx, link)
		if errutil.Is(err, errutil.StatusConstraintViolation) {
			continue
		}
		return err
	}

	return errutil.Internal("could not allocate a unique link code")
}

// IssueLink creates a new invitation owned by the caller's node.
func (s *Service) IssueLink(ctx context.Context, req IssueLinkRequest) (*graph.Link, error) {
	if req.UserID == "" {
		return nil, errutil.Unauthorized("caller is required")
	}

	q, err := s.getQuest(ctx, req.QuestID)
	if err != nil {
		return nil, err
	}
	if q.Status != quest.Active {
		return nil, errutil.PreconditionFailed("links can only be issued on an active quest")
	}

	ownerNode, err := s.traverser.NodeForUser(ctx, req.QuestID, req.UserID)
	if err != nil {
		return nil, err
	}
	if ownerNode == nil {
		return nil, errutil.PreconditionFailed("only participants can issue links")
	}

	linkType := req.Type
	if linkType == "" {
		linkType = graph.Broadcast
	}
	if linkType.String() == "" {
		return nil, errutil.ValidationFailed("unknown link type")
	}

	if req.RelationshipStrength != nil {
		if linkType != graph.Targeted {
			return nil, errutil.ValidationFailed("relationship strength only applies to targeted links")
		}
		if *req.RelationshipStrength < 1 || *req.RelationshipStrength > 5 {
			return nil, errutil.ValidationFailed("relationship strength must be between 1 and 5")
		}
	}

	link := &graph.Link{
		ID:                   s.node.Generate().String(),
		CreatedAt:            time.Now(),
		QuestID:              req.QuestID,
		OwnerNodeID:          ownerNode.ID,
		Type:                 linkType,
		Name:                 req.Name,
		RelationshipStrength: req.RelationshipStrength,
	}

	if err := s.createLinkWithFreshCode(ctx, nil, link); err != nil {
		return nil, err
	}

	return link, nil
}

// Reflow consumes a link, growing the tree by one node under the link's
// owner. A link may be consumed by exactly one join; the unique index on the
// consuming node's view_link_id decides concurrent attempts, and the loser is
// redirected to the existing child when it is their own, or told the invite
// is spent otherwise.
func (s *Service) Reflow(ctx context.Context, req ReflowRequest) (*graph.Node, error) {
	log := traceLog(ctx)

	if req.UserID == "" {
		return nil, errutil.Unauthorized("caller is required")
	}

	link, err := s.findLinkByCode(ctx, req.LinkCode)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, errutil.NotFound("link not found")
	}

	q, err := s.getQuest(ctx, link.QuestID)
	if err != nil {
		return nil, err
	}
	if q.Status != quest.Active {
		return nil, errutil.PreconditionFailed("quest is no longer accepting participants")
	}

	ownerNode, err := s.nodes.FindOne(ctx, &graph.Node{ID: link.OwnerNodeID})
	if err != nil {
		return nil, err
	}
	if ownerNode == nil {
		return nil, errutil.GraphCorruption("link references a missing owner node")
	}
	if ownerNode.UserID == req.UserID {
		return nil, errutil.PreconditionFailed("cannot consume your own link")
	}

	// A user holds at most one position per quest; joining again lands on it.
	if existing, err := s.traverser.NodeForUser(ctx, link.QuestID, req.UserID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	child := &graph.Node{
		ID:         s.node.Generate().String(),
		CreatedAt:  time.Now(),
		QuestID:    link.QuestID,
		UserID:     req.UserID,
		ParentID:   &ownerNode.ID,
		ViewLinkID: &link.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.nodes.WithTrx(tx).Create(ctx, child); err != nil {
			return err
		}

		return s.events.WithTrx(tx).AppendAll(ctx, []*event.Event{
			{
				QuestID:     link.QuestID,
				ActorUserID: req.UserID,
				Type:        event.NodeJoined,
				LinkID:      link.ID,
				NodeID:      child.ID,
			},
			{
				QuestID:     link.QuestID,
				ActorUserID: req.UserID,
				Type:        event.Reflow,
				LinkID:      link.ID,
				NodeID:      child.ID,
			},
		})
	})
	if err != nil {
		if errutil.Is(err, errutil.StatusConstraintViolation) {
			// Lost a race: either this link was consumed first, or a parallel
			// join already placed this user in the quest. If the user's own
			// write won, land on it.
			mine, findErr := s.traverser.NodeForUser(ctx, link.QuestID, req.UserID)
			if findErr == nil && mine != nil {
				return mine, nil
			}
			return nil, errutil.ConstraintViolation("this invite has already been used")
		}
		log.Error("reflow failed", zap.String("link_id", link.ID), zap.Error(err))
		return nil, err
	}

	log.Info("link consumed",
		zap.String("quest_id", link.QuestID),
		zap.String("link_id", link.ID),
		zap.String("node_id", child.ID),
	)

	return child, nil
}

// ProposeAnswer records a pending candidate resolution for the caller's node.
func (s *Service) ProposeAnswer(ctx context.Context, req ProposeAnswerRequest) (*answer.ProposedAnswer, error) {
	if req.UserID == "" {
		return nil, errutil.Unauthorized("caller is required")
	}

	q, err := s.getQuest(ctx, req.QuestID)
	if err != nil {
		return nil, err
	}
	if q.Status != quest.Active {
		return nil, errutil.PreconditionFailed("quest is not accepting answers")
	}

	node, err := s.traverser.NodeForUser(ctx, req.QuestID, req.UserID)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, errutil.PreconditionFailed("join the quest before answering")
	}

	pa := &answer.ProposedAnswer{
		ID:               s.node.Generate().String(),
		CreatedAt:        time.Now(),
		QuestID:          req.QuestID,
		NodeID:           node.ID,
		UserID:           req.UserID,
		Content:          req.Content,
		ScreeningAnswers: req.ScreeningAnswers,
		Status:           answer.Pending,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.answers.WithTrx(tx).Create(ctx, pa); err != nil {
			return err
		}
		return s.events.WithTrx(tx).Append(ctx, &event.Event{
			QuestID:          req.QuestID,
			ActorUserID:      req.UserID,
			Type:             event.AnswerProposed,
			NodeID:           node.ID,
			ProposedAnswerID: pa.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	return pa, nil
}

// AcceptAnswer marks the proposal accepted, finishes the quest and persists
// the reward split over the winner's ancestor path. The unique index on
// accepted_quest_id is the arbiter under concurrent accepts: exactly one
// transaction commits, the rest surface ConstraintViolation.
func (s *Service) AcceptAnswer(ctx context.Context, req AcceptAnswerRequest) (*answer.ProposedAnswer, []reward.Allocation, error) {
	log := traceLog(ctx)

	pa, err := s.answers.FindOne(ctx, &answer.ProposedAnswer{ID: req.ProposedAnswerID})
	if err != nil {
		return nil, nil, err
	}
	if pa == nil {
		return nil, nil, errutil.NotFound("proposed answer not found")
	}

	q, err := s.getQuest(ctx, pa.QuestID)
	if err != nil {
		return nil, nil, err
	}
	if q.SeekerID != req.ActorUserID {
		return nil, nil, errutil.PreconditionFailed("only the seeker can accept an answer")
	}
	if q.Status != quest.Active {
		return nil, nil, errutil.PreconditionFailed("quest is not active")
	}
	if pa.Status != answer.Pending {
		return nil, nil, errutil.PreconditionFailed("answer has already been decided")
	}

	winnerNode, err := s.nodes.FindOne(ctx, &graph.Node{ID: pa.NodeID})
	if err != nil {
		return nil, nil, err
	}
	if winnerNode == nil {
		return nil, nil, errutil.GraphCorruption("accepted answer references a missing node")
	}

	path, err := s.traverser.AncestorsOf(ctx, winnerNode)
	if err != nil {
		return nil, nil, err
	}

	allocations, err := reward.Split(path, q.RewardAmount)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	shareRows := make([]*reward.Share, 0, len(allocations))
	for _, alloc := range allocations {
		shareRows = append(shareRows, &reward.Share{
			ID:               s.node.Generate().String(),
			CreatedAt:        now,
			QuestID:          q.ID,
			ProposedAnswerID: pa.ID,
			NodeID:           alloc.Node.ID,
			UserID:           alloc.Node.UserID,
			Position:         alloc.Position,
			Amount:           alloc.Amount,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.answers.WithTrx(tx).Update(ctx, pa.ID, map[string]any{
			"status":            answer.Accepted,
			"decided_at":        now,
			"accepted_quest_id": q.ID,
		}); err != nil {
			return err
		}

		if err := s.nodes.WithTrx(tx).Update(ctx, winnerNode.ID, map[string]any{
			"status": graph.Accepted,
		}); err != nil {
			return err
		}

		if err := s.quests.WithTrx(tx).Update(ctx, q.ID, map[string]any{
			"status":     quest.Finished,
			"updated_at": now,
		}); err != nil {
			return err
		}

		if err := s.shares.WithTrx(tx).BatchCreate(ctx, shareRows); err != nil {
			return err
		}

		return s.events.WithTrx(tx).Append(ctx, &event.Event{
			QuestID:          q.ID,
			ActorUserID:      req.ActorUserID,
			Type:             event.AnswerAccepted,
			NodeID:           winnerNode.ID,
			ProposedAnswerID: pa.ID,
		})
	})
	if err != nil {
		if errutil.Is(err, errutil.StatusConstraintViolation) {
			return nil, nil, errutil.ConstraintViolation("another answer was already accepted for this quest")
		}
		log.Error("accept answer failed", zap.String("proposed_answer_id", pa.ID), zap.Error(err))
		return nil, nil, err
	}

	pa.Status = answer.Accepted
	pa.DecidedAt = &now
	pa.AcceptedQuestID = &q.ID

	log.Info("answer accepted",
		zap.String("quest_id", q.ID),
		zap.String("proposed_answer_id", pa.ID),
		zap.Int("chain_length", len(path)),
	)

	return pa, allocations, nil
}

// RejectAnswer marks a pending proposal rejected. Existing proposals are
// never silently mutated; rejection is always an explicit transition.
func (s *Service) RejectAnswer(ctx context.Context, req RejectAnswerRequest) (*answer.ProposedAnswer, error) {
	pa, err := s.answers.FindOne(ctx, &answer.ProposedAnswer{ID: req.ProposedAnswerID})
	if err != nil {
		return nil, err
	}
	if pa == nil {
		return nil, errutil.NotFound("proposed answer not found")
	}

	q, err := s.getQuest(ctx, pa.QuestID)
	if err != nil {
		return nil, err
	}
	if q.SeekerID != req.ActorUserID {
		return nil, errutil.PreconditionFailed("only the seeker can reject an answer")
	}
	if pa.Status != answer.Pending {
		return nil, errutil.PreconditionFailed("answer has already been decided")
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.answers.WithTrx(tx).Update(ctx, pa.ID, map[string]any{
			"status":     answer.Rejected,
			"decided_at": now,
		}); err != nil {
			return err
		}

		if err := s.nodes.WithTrx(tx).Update(ctx, pa.NodeID, map[string]any{
			"status": graph.Rejected,
		}); err != nil {
			return err
		}

		return s.events.WithTrx(tx).Append(ctx, &event.Event{
			QuestID:          pa.QuestID,
			ActorUserID:      req.ActorUserID,
			Type:             event.AnswerRejected,
			NodeID:           pa.NodeID,
			ProposedAnswerID: pa.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	pa.Status = answer.Rejected
	pa.DecidedAt = &now

	return pa, nil
}

// Terminate ends a draft or active quest without a winner.
func (s *Service) Terminate(ctx context.Context, req TerminateRequest) error {
	q, err := s.getQuest(ctx, req.QuestID)
	if err != nil {
		return err
	}
	if req.ActorUserID != q.SeekerID && req.ActorUserID != q.CreatorID {
		return errutil.PreconditionFailed("only the seeker or creator can terminate the quest")
	}
	if q.Status != quest.Draft && q.Status != quest.Active {
		return errutil.PreconditionFailed("quest has already ended")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.quests.WithTrx(tx).Update(ctx, q.ID, map[string]any{
			"status":             quest.Terminated,
			"termination_reason": req.Reason,
			"updated_at":         time.Now(),
		}); err != nil {
			return err
		}

		return s.events.WithTrx(tx).Append(ctx, &event.Event{
			QuestID:     q.ID,
			ActorUserID: req.ActorUserID,
			Type:        event.QuestTerminated,
		})
	})
}

// ExpireDue terminates a quest whose due date has elapsed while it was still
// draft or active. The eligibility check is a pure function of (dueDate,
// status, now), and the event log is the idempotence guard: a quest that
// already carries an expired or terminated event is left untouched, so the
// sweep can run any number of times without duplicating events.
func (s *Service) ExpireDue(ctx context.Context, questID string, now time.Time) error {
	q, err := s.getQuest(ctx, questID)
	if err != nil {
		return err
	}

	done, err := s.events.HasAny(ctx, questID, event.QuestExpired, event.QuestTerminated)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	if q.DueDate == nil || q.DueDate.After(now) {
		return errutil.PreconditionFailed("quest due date has not elapsed")
	}
	if q.Status != quest.Draft && q.Status != quest.Active {
		return errutil.PreconditionFailed("quest has already ended")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.quests.WithTrx(tx).Update(ctx, q.ID, map[string]any{
			"status":             quest.Terminated,
			"termination_reason": "expired",
			"updated_at":         time.Now(),
		}); err != nil {
			return err
		}

		return s.events.WithTrx(tx).Append(ctx, &event.Event{
			QuestID: q.ID,
			Type:    event.QuestExpired,
		})
	})
}

// EditQuest updates presentational fields on a draft or active quest.
func (s *Service) EditQuest(ctx context.Context, req EditQuestRequest) (*quest.Quest, error) {
	q, err := s.getQuest(ctx, req.QuestID)
	if err != nil {
		return nil, err
	}
	if req.ActorUserID != q.SeekerID && req.ActorUserID != q.CreatorID {
		return nil, errutil.PreconditionFailed("only the seeker or creator can edit the quest")
	}
	if q.Status != quest.Draft && q.Status != quest.Active {
		return nil, errutil.PreconditionFailed("quest has already ended")
	}

	updates := map[string]any{"updated_at": time.Now()}
	if req.Title != nil {
		if *req.Title == "" {
			return nil, errutil.ValidationFailed("title must not be empty")
		}
		updates["title"] = *req.Title
		updates["share_title"] = slug.Make(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.CoverMedia != nil {
		updates["cover_media"] = *req.CoverMedia
	}
	if len(updates) == 1 {
		return q, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.quests.WithTrx(tx).Update(ctx, q.ID, updates); err != nil {
			return err
		}

		return s.events.WithTrx(tx).Append(ctx, &event.Event{
			QuestID:     q.ID,
			ActorUserID: req.ActorUserID,
			Type:        event.QuestEdited,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.getQuest(ctx, q.ID)
}

// AddComment records a comment reference in the quest history. Comment bodies
// live outside the core; the event only carries the foreign id.
func (s *Service) AddComment(ctx context.Context, req AddCommentRequest) error {
	if req.UserID == "" {
		return errutil.Unauthorized("caller is required")
	}

	if _, err := s.getQuest(ctx, req.QuestID); err != nil {
		return err
	}

	node, err := s.traverser.NodeForUser(ctx, req.QuestID, req.UserID)
	if err != nil {
		return err
	}
	if node == nil {
		return errutil.PreconditionFailed("only participants can comment")
	}

	return s.events.Append(ctx, &event.Event{
		QuestID:     req.QuestID,
		ActorUserID: req.UserID,
		Type:        event.CommentAdded,
		NodeID:      node.ID,
		CommentID:   req.CommentID,
	})
}

// GetQuest loads a quest by id.
func (s *Service) GetQuest(ctx context.Context, questID string) (*quest.Quest, error) {
	return s.getQuest(ctx, questID)
}

// GetQuestForLink resolves a link code to its quest. Targeted links pass
// through the external access verifier first; access is denied on false.
func (s *Service) GetQuestForLink(ctx context.Context, linkCode string) (*quest.Quest, *graph.Link, error) {
	link, err := s.findLinkByCode(ctx, linkCode)
	if err != nil {
		return nil, nil, err
	}
	if link == nil {
		return nil, nil, errutil.NotFound("link not found")
	}

	if link.Type == graph.Targeted {
		ok, err := s.verifier.VerifyLinkAccess(ctx, link)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, errutil.Forbidden("link access denied")
		}
	}

	q, err := s.getQuest(ctx, link.QuestID)
	if err != nil {
		return nil, nil, err
	}

	return q, link, nil
}

// BranchView is the caller's slice of the tree: the chain that led to them
// and everything that grew below them.
type BranchView struct {
	Ancestors   []*graph.Node
	Descendants []graph.Descendant
}

// Branch computes the caller's ancestor path and descendant subtree. Reads
// are side-effect-free and may observe a quest mid-mutation.
func (s *Service) Branch(ctx context.Context, questID, userID string) (*BranchView, error) {
	if _, err := s.getQuest(ctx, questID); err != nil {
		return nil, err
	}

	ancestors, err := s.traverser.Ancestors(ctx, questID, userID)
	if err != nil {
		return nil, err
	}

	descendants, err := s.traverser.Descendants(ctx, questID, userID)
	if err != nil {
		return nil, err
	}

	return &BranchView{Ancestors: ancestors, Descendants: descendants}, nil
}

// History returns the quest's append-only event log in replay order.
func (s *Service) History(ctx context.Context, questID string) ([]*event.Event, error) {
	if _, err := s.getQuest(ctx, questID); err != nil {
		return nil, err
	}
	return s.events.History(ctx, questID)
}

// Shares returns the persisted reward split for a quest, if any.
func (s *Service) Shares(ctx context.Context, questID string) ([]*reward.Share, error) {
	return s.shares.Find(ctx, &reward.Share{QuestID: questID})
}

// ListQuests pages through quests by id-ordered cursor, optionally filtered
// by seeker and status.
func (s *Service) ListQuests(ctx context.Context, req ListQuestsRequest) ([]*quest.Quest, *pagination.PageInfo, error) {
	limit := req.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 250 {
		limit = 250
	}

	opts := []option.QueryOption{
		option.WithSortBy(option.QuerySortBy{
			SortBy: "id",
			Allow:  map[string]bool{"id": true},
		}),
		option.WithLimit(limit + 1),
	}

	if req.Cursor != "" {
		cursor, err := pagination.DecodeCursor(req.Cursor)
		if err != nil {
			return nil, nil, errutil.BadRequest("malformed cursor")
		}
		opts = append(opts, option.ApplyOperator(option.Condition{
			Field:    "id",
			Operator: option.GT,
			Value:    cursor.ID,
		}))
	}

	query := &quest.Quest{SeekerID: req.SeekerID, Status: quest.Status(req.Status)}
	rows, err := s.quests.Find(ctx, query, opts...)
	if err != nil {
		return nil, nil, err
	}

	rows, page, err := pagination.BuildCursorPageInfo(rows, limit, func(q *quest.Quest) string {
		return q.ID
	})
	if err != nil {
		return nil, nil, err
	}

	return rows, page, nil
}

// findLinkByCode resolves a link code, reading through the cache when one is
// wired. Link rows never change after insert, so cached entries cannot go
// stale.
func (s *Service) findLinkByCode(ctx context.Context, code string) (*graph.Link, error) {
	key := rediskey.BuildLinkCodeKey(code)

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			var link graph.Link
			if err := json.Unmarshal(raw, &link); err == nil {
				return &link, nil
			}
		}
	}

	link, err := s.links.FindOne(ctx, &graph.Link{LinkCode: code})
	if err != nil || link == nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(link); err == nil {
			if err := s.cache.Set(ctx, key, raw, 24*time.Hour).Err(); err != nil {
				zap.L().Warn("link cache write failed", zap.String("link_id", link.ID), zap.Error(err))
			}
		}
	}

	return link, nil
}

func (s *Service) getQuest(ctx context.Context, questID string) (*quest.Quest, error) {
	q, err := s.quests.FindOne(ctx, &quest.Quest{ID: questID})
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, errutil.NotFound("quest not found")
	}
	return q, nil
}
