package container

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/albumkit/internal/digest"
	"github.com/serroba/albumkit/internal/host"
	"github.com/serroba/albumkit/internal/messaging"
	"github.com/serroba/albumkit/internal/ratelimit"
	"go.uber.org/zap"
)

// PublisherGroupPackage provides the Redis stream publisher and the typed
// publish functions built on it.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     do.MustInvoke[*redis.Client](i),
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, do.MustInvoke[watermill.LoggerAdapter](i))
		if err != nil {
			return nil, fmt.Errorf("create redis stream publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (messaging.Publish[host.NotificationEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[host.NotificationEvent](group.Publisher(), host.TopicNotifications), nil
	})

	do.Provide(i, func(i *do.Injector) (messaging.Publish[host.ImageSavedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[host.ImageSavedEvent](group.Publisher(), host.TopicImageSaved), nil
	})
}

// DigestService flushes pending summaries and stops pruning on shutdown.
type DigestService struct {
	*digest.Digest
	cancel context.CancelFunc
}

func (d *DigestService) Shutdown() error {
	d.cancel()

	return d.Close()
}

// ConsumerGroupPackage provides the digest consumers over a Redis stream
// subscriber.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (message.Subscriber, error) {
		opts := do.MustInvoke[*Options](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        do.MustInvoke[*redis.Client](i),
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: opts.ConsumerGroup,
		}, do.MustInvoke[watermill.LoggerAdapter](i))
		if err != nil {
			return nil, fmt.Errorf("create redis stream subscriber: %w", err)
		}

		return subscriber, nil
	})

	do.Provide(i, func(i *do.Injector) (*DigestService, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i).Named("digest")

		d := digest.New(digest.NewLogSink(logger), logger, ratelimit.WithWindow(opts.digestWindow()))

		ctx, cancel := context.WithCancel(context.Background())
		go d.Guards().Run(ctx, pruneInterval)

		return &DigestService{Digest: d, cancel: cancel}, nil
	})

	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		subscriber := do.MustInvoke[message.Subscriber](i)
		logger := do.MustInvoke[*zap.Logger](i)
		d := do.MustInvoke[*DigestService](i)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(subscriber, host.TopicImageSaved, d.HandleSaved, logger))
		group.Add(messaging.NewConsumer(subscriber, host.TopicNotifications, d.HandleNotification, logger))

		return group, nil
	})
}
