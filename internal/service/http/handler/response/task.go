package response

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

type Task struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	Total      int        `json:"total"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Outcome    *Batch     `json:"outcome,omitempty"`
}

func (t *Task) Marsh() (string, error) {
	return jsoniter.MarshalToString(t)
}

func UnmarshalTask(data string) (*Task, error) {
	var result Task
	err := jsoniter.Unmarshal([]byte(data), &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
