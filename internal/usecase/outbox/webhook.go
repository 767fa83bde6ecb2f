package outbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/project/librarydesk/internal/usecase/repository"
)

const contentType = "application/json"

var (
	errFailRequest = errors.New("not 2xx response")
	ErrUnknownKind = errors.New("unsupported outbox kind")
)

const statusOk = 2

// WebhookHandler relays every known event kind to url as a JSON POST.
func WebhookHandler(client *http.Client, url string) GlobalHandler {
	return func(kind repository.OutboxKind) (KindHandler, error) {
		switch kind {
		case repository.OutboxKindAuthor,
			repository.OutboxKindPublisher,
			repository.OutboxKindCategory,
			repository.OutboxKindBook,
			repository.OutboxKindUser,
			repository.OutboxKindLoan:
			return postHandler(client, url, kind), nil
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
		}
	}
}

func postHandler(client *http.Client, url string, kind repository.OutboxKind) KindHandler {
	return func(ctx context.Context, data []byte) error {
		event, err := DecodeEvent(data)
		if err != nil {
			return fmt.Errorf("can not deserialize data in %s outbox handler: %w", kind, err)
		}

		request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("can not build request: %w", err)
		}
		request.Header.Set("Content-Type", contentType)
		request.Header.Set("X-Event-Kind", event.Kind)
		request.Header.Set("X-Event-Action", string(event.Action))

		response, err := client.Do(request)
		if err != nil {
			return fmt.Errorf("can not make post request to given url: %w", err)
		}

		defer response.Body.Close()

		if response.StatusCode/100 != statusOk {
			return fmt.Errorf("%w: %d", errFailRequest, response.StatusCode)
		}

		return nil
	}
}
