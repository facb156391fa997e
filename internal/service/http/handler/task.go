package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/reusedev/cutout-hub/internal/consts"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout"
	"github.com/reusedev/cutout-hub/internal/modules/logs"
	"github.com/reusedev/cutout-hub/internal/modules/queue"
	"github.com/reusedev/cutout-hub/internal/modules/remover"
	"github.com/reusedev/cutout-hub/internal/service/http/handler/request"
	"github.com/reusedev/cutout-hub/internal/service/http/handler/response"
)

type batchTask struct {
	id          string
	reqs        []cutout.Request
	concurrency int
	plan        remover.Plan
	createdAt   time.Time
}

func (t *batchTask) ID() string {
	return t.id
}

func (t *batchTask) Execute(ctx context.Context) error {
	if err := saveTask(response.Task{ID: t.id, Status: consts.TaskStatusRunning.String(), Total: len(t.reqs), CreatedAt: t.createdAt}); err != nil {
		return err
	}
	outcome := deps.Batcher.ProcessBatch(ctx, t.reqs, t.concurrency, t.plan)
	view := response.NewBatch(outcome)
	finishedAt := time.Now()
	status := consts.TaskStatusSucceed
	if ctx.Err() != nil {
		status = consts.TaskStatusCanceled
	}
	logs.Logger.Info().
		Str("task_id", t.id).
		Str("status", status.String()).
		Int("successful", outcome.Successful).
		Int("failed", outcome.Failed).
		Float64("estimated_cost", outcome.EstimatedCost).
		Msg("batch task finished")
	return saveTask(response.Task{
		ID:         t.id,
		Status:     status.String(),
		Total:      len(t.reqs),
		CreatedAt:  t.createdAt,
		FinishedAt: &finishedAt,
		Outcome:    &view,
	})
}

func saveTask(task response.Task) error {
	data, err := task.Marsh()
	if err != nil {
		return err
	}
	return deps.Tasks.SetWithExpiration(cacheKey(task.ID), data, deps.TaskTTL)
}

func BatchRemoveAsync(c *gin.Context) {
	form, reqs, ok := bindBatch(c)
	if !ok {
		return
	}
	task := &batchTask{
		id:          uuid.NewString(),
		reqs:        reqs,
		concurrency: form.Concurrency,
		plan:        remover.Plan{Order: request.SplitOrder(form.Order)},
		createdAt:   time.Now(),
	}
	if err := saveTask(response.Task{ID: task.id, Status: consts.TaskStatusQueued.String(), Total: len(reqs), CreatedAt: task.createdAt}); err != nil {
		logs.Logger.Err(err).Msg("save task failed")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	if err := deps.Queue.Enqueue(task); err != nil {
		if errors.Is(err, queue.ErrQueueFull) {
			c.JSON(http.StatusServiceUnavailable, response.QueueFullError)
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(gin.H{"task_id": task.id}))
}

func TaskQuery(c *gin.Context) {
	form := request.TaskQuery{}
	if err := c.ShouldBindQuery(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	if err := form.Valid(); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamErrorWithMessage(err.Error()))
		return
	}
	data, err := deps.Tasks.GetValue(cacheKey(form.ID))
	if err != nil {
		logs.Logger.Err(err).Msg("get task failed")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	if data == "" {
		c.JSON(http.StatusNotFound, response.TaskNotFound)
		return
	}
	task, err := response.UnmarshalTask(data)
	if err != nil {
		logs.Logger.Err(err).Msg("decode task failed")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(task))
}
