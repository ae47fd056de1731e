package queue

import (
	"github.com/Chris701117/pagepilot/internal/repository"
	"github.com/Chris701117/pagepilot/internal/service"
)

type Queue struct {
	pr        repository.PostRepository
	publisher service.PublishService
}

func NewQueue(pr repository.PostRepository, publisher service.PublishService) *Queue {
	return &Queue{
		pr:        pr,
		publisher: publisher,
	}
}

const TaskTypePublishPost = "publish:post"

type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
}
