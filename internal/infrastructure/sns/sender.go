package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-menu-auth/internal/config"
)

// SNS rejects subjects longer than this.
const maxSubjectLen = 100

// recipientAttr is the message attribute subscriptions must filter on.
const recipientAttr = "to"

type snsAPI interface {
	sns.ListSubscriptionsByTopicAPIClient
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	GetSubscriptionAttributes(ctx context.Context, in *sns.GetSubscriptionAttributesInput, optFns ...func(*sns.Options)) (*sns.GetSubscriptionAttributesOutput, error)
}

// TopicNotifier publishes messages to an SNS topic. Every subscription must
// carry a filter policy on the "to" message attribute, so each message
// reaches only its recipient.
type TopicNotifier struct {
	client   snsAPI
	topicARN string
}

// NewTopicNotifier fails when any subscription on the topic could receive
// messages addressed to someone else.
func NewTopicNotifier(ctx context.Context, cfg *config.Config) (*TopicNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	opts := []func(*sns.Options){}
	if cfg.AWSEndpointURL != "" {
		opts = append(opts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return newTopicNotifier(ctx, sns.NewFromConfig(awsCfg, opts...), cfg.SNSTopicARN)
}

func newTopicNotifier(ctx context.Context, client snsAPI, topicARN string) (*TopicNotifier, error) {
	if err := checkSubscriptions(ctx, client, topicARN); err != nil {
		return nil, err
	}
	return &TopicNotifier{client: client, topicARN: topicARN}, nil
}

func checkSubscriptions(ctx context.Context, client snsAPI, topicARN string) error {
	p := sns.NewListSubscriptionsByTopicPaginator(client, &sns.ListSubscriptionsByTopicInput{
		TopicArn: aws.String(topicARN),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list topic subscriptions: %w", err)
		}
		for _, sub := range page.Subscriptions {
			if err := checkSubscription(ctx, client, sub); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkSubscription(ctx context.Context, client snsAPI, sub types.Subscription) error {
	arn := aws.ToString(sub.SubscriptionArn)
	if arn == "PendingConfirmation" {
		return fmt.Errorf("subscription for %s is pending confirmation; its filter policy cannot be checked", aws.ToString(sub.Endpoint))
	}
	out, err := client.GetSubscriptionAttributes(ctx, &sns.GetSubscriptionAttributesInput{
		SubscriptionArn: aws.String(arn),
	})
	if err != nil {
		return fmt.Errorf("get subscription attributes %s: %w", arn, err)
	}
	if scope := out.Attributes["FilterPolicyScope"]; scope != "" && scope != "MessageAttributes" {
		return fmt.Errorf("subscription %s filters on %s, want MessageAttributes", arn, scope)
	}
	var policy map[string]json.RawMessage
	if raw := out.Attributes["FilterPolicy"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &policy); err != nil {
			return fmt.Errorf("subscription %s has unreadable filter policy: %w", arn, err)
		}
	}
	if _, ok := policy[recipientAttr]; !ok {
		return fmt.Errorf("subscription %s has no filter policy on %q", arn, recipientAttr)
	}
	return nil
}

func (n *TopicNotifier) Send(ctx context.Context, to, subject, body string) error {
	if len(subject) > maxSubjectLen {
		subject = subject[:maxSubjectLen]
	}
	_, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			recipientAttr:  {DataType: aws.String("String"), StringValue: aws.String(to)},
			"content_type": {DataType: aws.String("String"), StringValue: aws.String("text/html")},
		},
	})
	if err != nil {
		return fmt.Errorf("publish to topic: %w", err)
	}
	return nil
}
