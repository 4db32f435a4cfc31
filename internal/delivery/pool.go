package delivery

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// failedCaption текст, который видит пользователь вместо трека при сбое
const failedCaption = "Ошибка при загрузке трека"

// Ошибки пула
var (
	ErrQueueFull   = &Error{msg: "delivery queue is full"}
	ErrPoolStopped = &Error{msg: "delivery pool is stopped"}
)

// Error ошибка пула доставки
type Error struct {
	msg string
}

func (e *Error) Error() string {
	return e.msg
}

// Pool пул воркеров доставки. Задачи обрабатываются в порядке
// поступления; закрытие очереди служит сигналом остановки, воркеры
// сначала дорабатывают все поставленные задачи и только потом выходят.
type Pool struct {
	workers   int
	tasks     chan Task
	source    TrackSource
	messenger Messenger
	logger    *zap.Logger
	wg        sync.WaitGroup
	stopOnce  sync.Once
	stopped   bool
	mu        sync.RWMutex
	metrics   Metrics
}

// Metrics метрики пула доставки
type Metrics struct {
	mu        sync.RWMutex
	delivered int64
	failed    int64
}

// NewPool создает новый пул воркеров доставки
func NewPool(workers, queueSize int, source TrackSource, messenger Messenger, logger *zap.Logger) *Pool {
	return &Pool{
		workers:   workers,
		tasks:     make(chan Task, queueSize),
		source:    source,
		messenger: messenger,
		logger:    logger,
	}
}

// Start запускает воркеров
func (p *Pool) Start() {
	p.logger.Info("Starting delivery pool", zap.Int("workers", p.workers))

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop останавливает пул: новые задачи не принимаются, очередь
// дорабатывается до конца
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping delivery pool")
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()
		close(p.tasks)
	})

	p.wg.Wait()
	p.logger.Info("Delivery pool stopped")
}

// Enqueue ставит задачу в очередь. Вызов не блокируется: при
// переполненной очереди возвращается ошибка.
func (p *Pool) Enqueue(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// QueueDepth возвращает число задач, ожидающих воркера
func (p *Pool) QueueDepth() int {
	return len(p.tasks)
}

// Delivered возвращает число доставленных треков
func (p *Pool) Delivered() int64 {
	p.metrics.mu.RLock()
	defer p.metrics.mu.RUnlock()
	return p.metrics.delivered
}

// Failed возвращает число задач, завершившихся сбоем
func (p *Pool) Failed() int64 {
	p.metrics.mu.RLock()
	defer p.metrics.mu.RUnlock()
	return p.metrics.failed
}

// worker основной цикл воркера: блокирующее ожидание задачи, выход
// после закрытия и опустошения очереди
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("Delivery worker started", zap.Int("worker_id", id))

	for task := range p.tasks {
		p.process(task, id)
	}

	p.logger.Debug("Delivery worker stopped", zap.Int("worker_id", id))
}

// process проводит задачу по конечным состояниям: доставлено или сбой.
// Повторных попыток нет, сбой терминален для задачи, но не для воркера.
func (p *Pool) process(task Task, workerID int) {
	start := time.Now()
	ctx := context.Background()

	p.logger.Info("Resolving track",
		zap.Int("worker_id", workerID),
		zap.Int64("track_id", task.TrackID))

	track := p.source.TrackInfo(ctx, task.TrackID)
	if track == nil {
		p.fail(task, workerID, "track info unavailable")
		return
	}

	link, ok := p.source.DownloadURI(ctx, track.ID)
	if !ok {
		p.fail(task, workerID, "download uri unavailable")
		return
	}

	audio, err := p.source.FetchAudio(ctx, link)
	if err != nil {
		p.logger.Error("Failed to fetch audio",
			zap.Int("worker_id", workerID),
			zap.Int64("track_id", task.TrackID),
			zap.Error(err))
		p.fail(task, workerID, "audio fetch failed")
		return
	}

	// Обложка опциональна: ее отсутствие не роняет задачу
	var thumbnail []byte
	if track.Thumbnail != "" {
		thumbnail, err = p.source.FetchThumbnail(ctx, track.Thumbnail)
		if err != nil {
			p.logger.Warn("Failed to fetch thumbnail",
				zap.Int64("track_id", task.TrackID),
				zap.Error(err))
			thumbnail = nil
		}
	}

	ref, err := p.messenger.UploadAudio(AudioUpload{
		Audio:     audio,
		Thumbnail: thumbnail,
		Title:     track.Title,
		Performer: track.ArtistLine(),
		Duration:  track.DurationSeconds(),
	})
	if err != nil {
		p.logger.Error("Failed to upload audio",
			zap.Int("worker_id", workerID),
			zap.Int64("track_id", task.TrackID),
			zap.Error(err))
		p.fail(task, workerID, "upload failed")
		return
	}

	if err := p.messenger.ReplaceAudio(task.InlineMessageID, ref.FileID); err != nil {
		// Исходное сообщение могло быть удалено; задачу это не перезапускает
		p.logger.Warn("Failed to edit inline message",
			zap.String("inline_message_id", task.InlineMessageID),
			zap.Error(err))
	}

	if err := p.messenger.DeleteMessage(ref.ChatID, ref.MessageID); err != nil {
		p.logger.Debug("Failed to delete storage message",
			zap.Int64("chat_id", ref.ChatID),
			zap.Int("message_id", ref.MessageID),
			zap.Error(err))
	}

	p.metrics.mu.Lock()
	p.metrics.delivered++
	p.metrics.mu.Unlock()

	p.logger.Info("Track delivered",
		zap.Int("worker_id", workerID),
		zap.Int64("track_id", task.TrackID),
		zap.Duration("duration", time.Since(start)))
}

// fail переводит задачу в терминальное состояние сбоя и сообщает об
// этом пользователю правкой подписи сообщения
func (p *Pool) fail(task Task, workerID int, reason string) {
	p.logger.Error("Delivery failed",
		zap.Int("worker_id", workerID),
		zap.Int64("track_id", task.TrackID),
		zap.String("reason", reason))

	if err := p.messenger.EditCaption(task.InlineMessageID, failedCaption); err != nil {
		p.logger.Warn("Failed to edit failure caption",
			zap.String("inline_message_id", task.InlineMessageID),
			zap.Error(err))
	}

	p.metrics.mu.Lock()
	p.metrics.failed++
	p.metrics.mu.Unlock()
}
