package clients

import "time"

const (
	INITIAL_BACKOFF = 1 * time.Second
	MAX_BACKOFF     = 32 * time.Second
	USER_AGENT      = "commentscope/1.0 (+https://github.com/spacesedan/commentscope)"

	SERVICE_YOUTUBE     = "youtube"
	SERVICE_HUGGINGFACE = "huggingface"
	SERVICE_OPENAI      = "openai"
)
