package handlers

import (
	"backend/models"
	"backend/services"
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	maxDraftAttempts = 3
	draftTimeout     = 2 * time.Minute
)

// DraftJobManager runs proposal drafting in the background. Job rows live
// in Postgres through gorm so a restart can tell queued from orphaned
// work; the cancel map and wait group only cover goroutines in this
// process.
type DraftJobManager struct {
	gormDB  *gorm.DB
	sqlDB   *sql.DB
	drafter services.ProposalDrafter

	mu           sync.RWMutex
	jobCancelMap map[uint]context.CancelFunc
	jobWG        sync.WaitGroup

	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
	shutdownOnce   sync.Once
}

func NewDraftJobManager(gormDB *gorm.DB, sqlDB *sql.DB, drafter services.ProposalDrafter) *DraftJobManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &DraftJobManager{
		gormDB:         gormDB,
		sqlDB:          sqlDB,
		drafter:        drafter,
		jobCancelMap:   make(map[uint]context.CancelFunc),
		shutdownCtx:    ctx,
		shutdownCancel: cancel,
	}
}

func (m *DraftJobManager) registerJob(jobID uint, cancelFunc context.CancelFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobCancelMap[jobID] = cancelFunc
}

func (m *DraftJobManager) unregisterJob(jobID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobCancelMap, jobID)
}

// Enqueue records a drafting job and starts it immediately.
func (m *DraftJobManager) Enqueue(proposalID, estimateID int, tone string) (models.ProposalDraftJob, error) {
	job := models.ProposalDraftJob{
		ProposalID: proposalID,
		EstimateID: estimateID,
		Status:     "queued",
		Tone:       tone,
	}
	if err := m.gormDB.Create(&job).Error; err != nil {
		return job, err
	}

	jobCtx, cancel := context.WithCancel(m.shutdownCtx)
	m.registerJob(job.ID, cancel)

	m.jobWG.Add(1)
	go func() {
		defer m.jobWG.Done()
		defer m.unregisterJob(job.ID)
		defer cancel()
		m.run(jobCtx, job)
	}()

	return job, nil
}

func (m *DraftJobManager) run(ctx context.Context, job models.ProposalDraftJob) {
	m.gormDB.Model(&job).Update("status", "running")

	req, err := m.buildDraftRequest(job)
	if err != nil {
		m.fail(job, fmt.Sprintf("load inputs: %v", err))
		return
	}

	var body string
	for attempt := 1; attempt <= maxDraftAttempts; attempt++ {
		m.gormDB.Model(&job).Update("attempts", attempt)

		attemptCtx, cancelAttempt := context.WithTimeout(ctx, draftTimeout)
		body, err = m.drafter.DraftProposal(attemptCtx, req)
		cancelAttempt()
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			m.fail(job, "cancelled")
			return
		}
		log.Printf("draft job %d attempt %d/%d failed: %v", job.ID, attempt, maxDraftAttempts, err)
	}
	if err != nil {
		// Last resort so the office never ends up with an empty proposal.
		body, err = services.TemplateProposalDrafter{}.DraftProposal(ctx, req)
		if err != nil {
			m.fail(job, err.Error())
			return
		}
	}

	if _, err := m.sqlDB.Exec(
		`UPDATE proposals SET body = $1, updated_at = NOW() WHERE id = $2 AND status = 'draft'`,
		body, job.ProposalID,
	); err != nil {
		m.fail(job, fmt.Sprintf("save body: %v", err))
		return
	}

	m.gormDB.Model(&job).Updates(map[string]interface{}{"status": "done", "error": ""})
}

func (m *DraftJobManager) fail(job models.ProposalDraftJob, reason string) {
	m.gormDB.Model(&job).Updates(map[string]interface{}{"status": "failed", "error": reason})
}

func (m *DraftJobManager) buildDraftRequest(job models.ProposalDraftJob) (services.DraftRequest, error) {
	var req services.DraftRequest
	req.Tone = job.Tone

	estimate, err := loadEstimate(m.sqlDB, job.EstimateID)
	if err != nil {
		return req, err
	}
	req.Breakdown = estimate.Breakdown.CostBreakdown
	req.ProjectName = estimate.ProjectName

	err = m.sqlDB.QueryRow(`
		SELECT c.name FROM clients c
		JOIN projects p ON p.client_id = c.id
		WHERE p.id = $1`, estimate.ProjectID).Scan(&req.ClientName)
	return req, err
}

// CancelJob stops a running draft. Finished jobs are left alone.
func (m *DraftJobManager) CancelJob(jobID uint) bool {
	m.mu.RLock()
	cancel, ok := m.jobCancelMap[jobID]
	m.mu.RUnlock()
	if ok {
		cancel()
	}
	return ok
}

// Shutdown cancels every running job and waits for the goroutines, up to
// the given grace period.
func (m *DraftJobManager) Shutdown(grace time.Duration) {
	m.shutdownOnce.Do(func() {
		m.shutdownCancel()
		done := make(chan struct{})
		go func() {
			m.jobWG.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(grace):
			log.Printf("draft job manager: shutdown grace period expired")
		}
	})
}

// GetDraftJobHandler godoc
// @Summary      Get a proposal draft job's status
// @Tags         proposals
// @Produce      json
// @Param        id  path  int  true  "Job ID"
// @Success      200  {object}  models.ProposalDraftJob
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/draft-jobs/{id} [get]
func GetDraftJobHandler(db *sql.DB, manager *DraftJobManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID"})
			return
		}

		var job models.ProposalDraftJob
		if err := manager.gormDB.First(&job, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query job", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, job)
	}
}

// CancelDraftJobHandler godoc
// @Summary      Cancel a running proposal draft job
// @Tags         proposals
// @Produce      json
// @Param        id  path  int  true  "Job ID"
// @Success      200  {object}  object
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/draft-jobs/{id}/cancel [post]
func CancelDraftJobHandler(db *sql.DB, manager *DraftJobManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID"})
			return
		}

		if !manager.CancelJob(uint(id)) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job is not running"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": id, "cancelled": true})
	}
}
