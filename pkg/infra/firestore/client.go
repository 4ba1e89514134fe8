package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/skillsync/skillsync/pkg/domain/model"
	"github.com/skillsync/skillsync/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionUsers         = "users"
	collectionEvidence      = "skill_evidence"
	collectionClaims        = "skill_claims"
	collectionSubscriptions = "subscriptions"
	collectionRuns          = "pipeline_runs"
	collectionNotifications = "notifications"
	collectionHistory       = "update_history"
	collectionNarratives    = "narratives"
	collectionJobs          = "jobs"
)

// Client implements interfaces.Store on Firestore. The pipeline only
// needs key lookups, equality filters, and upserts, all of which map
// directly onto document operations.
type Client struct {
	db *firestore.Client
}

// New creates a Firestore-backed store
func New(ctx context.Context, projectID, databaseID string) (*Client, error) {
	db, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Firestore client",
			goerr.V("project_id", projectID), goerr.V("database_id", databaseID))
	}
	return &Client{db: db}, nil
}

// Close releases the underlying gRPC connection
func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) GetUser(ctx context.Context, id string) (*model.User, error) {
	doc, err := c.db.Collection(collectionUsers).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrUserNotFound, "no such user", goerr.V("user_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("user_id", id))
	}

	var user model.User
	if err := doc.DataTo(&user); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user", goerr.V("user_id", id))
	}
	return &user, nil
}

func (c *Client) GetUserByLogin(ctx context.Context, hostingLogin string) (*model.User, error) {
	iter := c.db.Collection(collectionUsers).
		Where("hosting_login", "==", hostingLogin).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(types.ErrUserNotFound, "no user with hosting login",
			goerr.V("login", hostingLogin))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query user by login", goerr.V("login", hostingLogin))
	}

	var user model.User
	if err := doc.DataTo(&user); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user", goerr.V("login", hostingLogin))
	}
	return &user, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]*model.User, error) {
	iter := c.db.Collection(collectionUsers).Documents(ctx)
	defer iter.Stop()

	var users []*model.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate users")
		}
		var user model.User
		if err := doc.DataTo(&user); err != nil {
			return nil, goerr.Wrap(err, "failed to decode user", goerr.V("doc_id", doc.Ref.ID))
		}
		users = append(users, &user)
	}
	return users, nil
}

func (c *Client) SaveUser(ctx context.Context, user *model.User) error {
	if _, err := c.db.Collection(collectionUsers).Doc(user.ID).Set(ctx, user); err != nil {
		return goerr.Wrap(err, "failed to save user", goerr.V("user_id", user.ID))
	}
	return nil
}

func (c *Client) UpsertEvidence(ctx context.Context, ev *model.SkillEvidence) error {
	docID := ev.UserID + "_" + skillKey(ev.Skill)
	if _, err := c.db.Collection(collectionEvidence).Doc(docID).Set(ctx, ev); err != nil {
		return goerr.Wrap(err, "failed to upsert skill evidence",
			goerr.V("user_id", ev.UserID), goerr.V("skill", ev.Skill))
	}
	return nil
}

func (c *Client) ListEvidence(ctx context.Context, userID string) ([]*model.SkillEvidence, error) {
	iter := c.db.Collection(collectionEvidence).Where("user_id", "==", userID).Documents(ctx)
	defer iter.Stop()

	var evidences []*model.SkillEvidence
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate skill evidence", goerr.V("user_id", userID))
		}
		var ev model.SkillEvidence
		if err := doc.DataTo(&ev); err != nil {
			return nil, goerr.Wrap(err, "failed to decode skill evidence", goerr.V("doc_id", doc.Ref.ID))
		}
		evidences = append(evidences, &ev)
	}
	return evidences, nil
}

func (c *Client) UpsertClaim(ctx context.Context, claim *model.VerifiedSkillClaim) error {
	docID := claim.UserID + "_" + skillKey(claim.Skill)
	if _, err := c.db.Collection(collectionClaims).Doc(docID).Set(ctx, claim); err != nil {
		return goerr.Wrap(err, "failed to upsert skill claim",
			goerr.V("user_id", claim.UserID), goerr.V("skill", claim.Skill))
	}
	return nil
}

func (c *Client) ListClaims(ctx context.Context, userID string) ([]*model.VerifiedSkillClaim, error) {
	iter := c.db.Collection(collectionClaims).Where("user_id", "==", userID).Documents(ctx)
	defer iter.Stop()

	var claims []*model.VerifiedSkillClaim
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate skill claims", goerr.V("user_id", userID))
		}
		var claim model.VerifiedSkillClaim
		if err := doc.DataTo(&claim); err != nil {
			return nil, goerr.Wrap(err, "failed to decode skill claim", goerr.V("doc_id", doc.Ref.ID))
		}
		claims = append(claims, &claim)
	}
	return claims, nil
}

func (c *Client) SaveSubscription(ctx context.Context, sub *model.SubscriptionRecord) error {
	docID := sub.Owner + "__" + sub.Repo
	if _, err := c.db.Collection(collectionSubscriptions).Doc(docID).Set(ctx, sub); err != nil {
		return goerr.Wrap(err, "failed to save subscription",
			goerr.V("owner", sub.Owner), goerr.V("repo", sub.Repo))
	}
	return nil
}

// GetSubscription returns (nil, nil) when no record exists
func (c *Client) GetSubscription(ctx context.Context, owner, repo string) (*model.SubscriptionRecord, error) {
	doc, err := c.db.Collection(collectionSubscriptions).Doc(owner + "__" + repo).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get subscription",
			goerr.V("owner", owner), goerr.V("repo", repo))
	}

	var sub model.SubscriptionRecord
	if err := doc.DataTo(&sub); err != nil {
		return nil, goerr.Wrap(err, "failed to decode subscription", goerr.V("doc_id", doc.Ref.ID))
	}
	return &sub, nil
}

func (c *Client) ListActiveSubscriptions(ctx context.Context, userID string) ([]*model.SubscriptionRecord, error) {
	iter := c.db.Collection(collectionSubscriptions).
		Where("user_id", "==", userID).
		Where("active", "==", true).
		Documents(ctx)
	defer iter.Stop()

	var subs []*model.SubscriptionRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate subscriptions", goerr.V("user_id", userID))
		}
		var sub model.SubscriptionRecord
		if err := doc.DataTo(&sub); err != nil {
			return nil, goerr.Wrap(err, "failed to decode subscription", goerr.V("doc_id", doc.Ref.ID))
		}
		subs = append(subs, &sub)
	}
	return subs, nil
}

func (c *Client) CreateRun(ctx context.Context, run *model.PipelineRunRecord) error {
	if _, err := c.db.Collection(collectionRuns).Doc(run.ID).Create(ctx, run); err != nil {
		return goerr.Wrap(err, "failed to create pipeline run record", goerr.V("run_id", run.ID))
	}
	return nil
}

func (c *Client) UpdateRun(ctx context.Context, run *model.PipelineRunRecord) error {
	if _, err := c.db.Collection(collectionRuns).Doc(run.ID).Set(ctx, run); err != nil {
		return goerr.Wrap(err, "failed to update pipeline run record", goerr.V("run_id", run.ID))
	}
	return nil
}

// FindRunningRun returns (nil, nil) when the user has no run in
// progress
func (c *Client) FindRunningRun(ctx context.Context, userID string) (*model.PipelineRunRecord, error) {
	iter := c.db.Collection(collectionRuns).
		Where("user_id", "==", userID).
		Where("status", "==", string(model.RunStatusRunning)).
		Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query running pipeline", goerr.V("user_id", userID))
	}

	var run model.PipelineRunRecord
	if err := doc.DataTo(&run); err != nil {
		return nil, goerr.Wrap(err, "failed to decode pipeline run record", goerr.V("doc_id", doc.Ref.ID))
	}
	return &run, nil
}

func (c *Client) CreateNotification(ctx context.Context, n *model.ChangeNotification) error {
	if _, err := c.db.Collection(collectionNotifications).Doc(n.ID).Create(ctx, n); err != nil {
		return goerr.Wrap(err, "failed to create notification", goerr.V("user_id", n.UserID))
	}
	return nil
}

func (c *Client) CreateHistory(ctx context.Context, h *model.ProfileUpdateHistory) error {
	if _, err := c.db.Collection(collectionHistory).Doc(h.ID).Create(ctx, h); err != nil {
		return goerr.Wrap(err, "failed to create history entry", goerr.V("user_id", h.UserID))
	}
	return nil
}

type narrativeDoc struct {
	Summary   string    `firestore:"summary"`
	CreatedAt time.Time `firestore:"created_at"`
}

// GetNarrative returns "" on a cache miss
func (c *Client) GetNarrative(ctx context.Context, sha string) (string, error) {
	doc, err := c.db.Collection(collectionNarratives).Doc(sha).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", nil
		}
		return "", goerr.Wrap(err, "failed to get narrative", goerr.V("sha", sha))
	}

	var n narrativeDoc
	if err := doc.DataTo(&n); err != nil {
		return "", goerr.Wrap(err, "failed to decode narrative", goerr.V("sha", sha))
	}
	return n.Summary, nil
}

func (c *Client) PutNarrative(ctx context.Context, sha, summary string) error {
	n := narrativeDoc{Summary: summary, CreatedAt: time.Now()}
	if _, err := c.db.Collection(collectionNarratives).Doc(sha).Set(ctx, n); err != nil {
		return goerr.Wrap(err, "failed to put narrative", goerr.V("sha", sha))
	}
	return nil
}

func (c *Client) SaveJob(ctx context.Context, job *model.ScheduledJob) error {
	if _, err := c.db.Collection(collectionJobs).Doc(job.ID).Set(ctx, job); err != nil {
		return goerr.Wrap(err, "failed to save job", goerr.V("job_id", job.ID))
	}
	return nil
}

func (c *Client) UpdateJob(ctx context.Context, job *model.ScheduledJob) error {
	if _, err := c.db.Collection(collectionJobs).Doc(job.ID).Set(ctx, job); err != nil {
		return goerr.Wrap(err, "failed to update job", goerr.V("job_id", job.ID))
	}
	return nil
}

// FindPendingJob returns (nil, nil) when no pending job of the kind
// exists for the user
func (c *Client) FindPendingJob(ctx context.Context, userID string, kind model.JobKind) (*model.ScheduledJob, error) {
	iter := c.db.Collection(collectionJobs).
		Where("user_id", "==", userID).
		Where("kind", "==", string(kind)).
		Where("status", "==", string(model.JobStatusPending)).
		Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query pending job", goerr.V("user_id", userID))
	}

	var job model.ScheduledJob
	if err := doc.DataTo(&job); err != nil {
		return nil, goerr.Wrap(err, "failed to decode job", goerr.V("doc_id", doc.Ref.ID))
	}
	return &job, nil
}

func (c *Client) DeletePendingJobs(ctx context.Context, userID string, kind model.JobKind) error {
	iter := c.db.Collection(collectionJobs).
		Where("user_id", "==", userID).
		Where("kind", "==", string(kind)).
		Where("status", "==", string(model.JobStatusPending)).
		Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate pending jobs", goerr.V("user_id", userID))
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete pending job", goerr.V("doc_id", doc.Ref.ID))
		}
	}
	return nil
}

func (c *Client) ListDueJobs(ctx context.Context, now time.Time) ([]*model.ScheduledJob, error) {
	iter := c.db.Collection(collectionJobs).
		Where("status", "==", string(model.JobStatusPending)).
		Where("run_at", "<=", now).
		Documents(ctx)
	defer iter.Stop()

	var jobs []*model.ScheduledJob
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate due jobs")
		}
		var job model.ScheduledJob
		if err := doc.DataTo(&job); err != nil {
			return nil, goerr.Wrap(err, "failed to decode job", goerr.V("doc_id", doc.Ref.ID))
		}
		jobs = append(jobs, &job)
	}
	return jobs, nil
}

// skillKey makes a skill name safe for use in a document ID
func skillKey(skill string) string {
	return strings.NewReplacer("/", "-", " ", "-").Replace(strings.ToLower(skill))
}
