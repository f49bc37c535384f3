package dataloader

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/graph-gophers/dataloader"
)

type contextKey string

const key = contextKey("dataloaders")

// PostCounter - часть хранилища, нужная лоадерам.
type PostCounter interface {
	CountPostsByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
}

// Loaders содержит все дата-лоадеры приложения.
type Loaders struct {
	PostCountByAuthorID *dataloader.Loader
}

// NewLoaders создает лоадеры на один запрос. Кэш отключен: каждое значение
// считается заново, лоадер только объединяет запросы в один батч.
func NewLoaders(store PostCounter) *Loaders {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		results := make([]*dataloader.Result, len(keys))

		// Преобразуем ключи в []uint
		authorIDs := make([]uint, len(keys))
		for i, k := range keys {
			id, err := strconv.ParseUint(k.String(), 10, 64)
			if err != nil {
				for j := range results {
					results[j] = &dataloader.Result{Error: fmt.Errorf("bad author key %q: %w", k.String(), err)}
				}
				return results
			}
			authorIDs[i] = uint(id)
		}

		// Вызываем метод хранилища, который делает ОДИН запрос к БД
		counts, err := store.CountPostsByAuthors(ctx, authorIDs)
		if err != nil {
			// В случае ошибки, возвращаем ее для всех ключей
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Формируем результат в том же порядке, что и ключи
		for i, id := range authorIDs {
			results[i] = &dataloader.Result{Data: counts[id]}
		}
		return results
	}

	return &Loaders{
		PostCountByAuthorID: dataloader.NewBatchedLoader(batchFn,
			dataloader.WithWait(time.Millisecond),
			dataloader.WithCache(&dataloader.NoCache{}),
		),
	}
}

// Middleware для внедрения лоадеров в контекст запроса.
func Middleware(store PostCounter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), key, NewLoaders(store))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// For извлекает лоадеры из контекста. Без middleware возвращает новые лоадеры.
func For(ctx context.Context, store PostCounter) *Loaders {
	if l, ok := ctx.Value(key).(*Loaders); ok {
		return l
	}
	return NewLoaders(store)
}

// PostCounts загружает число постов для каждого автора одним батчем.
func (l *Loaders) PostCounts(ctx context.Context, authorIDs []uint) ([]int64, error) {
	if len(authorIDs) == 0 {
		return []int64{}, nil
	}
	keys := make([]string, len(authorIDs))
	for i, id := range authorIDs {
		keys[i] = strconv.FormatUint(uint64(id), 10)
	}

	values, errs := l.PostCountByAuthorID.LoadMany(ctx, dataloader.NewKeysFromStrings(keys))()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	counts := make([]int64, len(values))
	for i, v := range values {
		n, ok := v.(int64)
		if !ok {
			return nil, fmt.Errorf("unexpected post count %T for author %d", v, authorIDs[i])
		}
		counts[i] = n
	}
	return counts, nil
}
