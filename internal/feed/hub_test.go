package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/blog-api/internal/domain"
)

func TestHub_PublishToPostSubscribers(t *testing.T) {
	hub := NewHub(4)

	ch, cancel := hub.Subscribe(1)
	defer cancel()
	other, cancelOther := hub.Subscribe(2)
	defer cancelOther()

	hub.Publish(&domain.Comment{ID: 10, PostID: 1})

	got := <-ch
	require.NotNil(t, got)
	assert.EqualValues(t, 10, got.ID)
	assert.Empty(t, other)
}

func TestHub_PublishDoesNotBlock(t *testing.T) {
	hub := NewHub(1)
	ch, cancel := hub.Subscribe(1)
	defer cancel()

	hub.Publish(&domain.Comment{ID: 1, PostID: 1})
	hub.Publish(&domain.Comment{ID: 2, PostID: 1}) // dropped

	assert.EqualValues(t, 1, (<-ch).ID)
	assert.Empty(t, ch)
}

func TestHub_CancelRemovesSubscriber(t *testing.T) {
	hub := NewHub(1)
	ch, cancel := hub.Subscribe(1)
	assert.Equal(t, 1, hub.Subscribers(1))

	cancel()
	cancel()
	assert.Equal(t, 0, hub.Subscribers(1))

	_, open := <-ch
	assert.False(t, open)

	// Публикация без подписчиков ничего не делает.
	hub.Publish(&domain.Comment{ID: 1, PostID: 1})
}
