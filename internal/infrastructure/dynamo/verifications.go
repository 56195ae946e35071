package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-menu-auth/internal/domain"
)

// VerificationRepo manages one-time login codes.
// PK: email. A PutItem replaces any earlier code for the same email, so
// issuing is a single atomic write.
type VerificationRepo struct {
	client    API
	tableName string
}

func NewVerificationRepo(client API, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName}
}

func (r *VerificationRepo) Replace(ctx context.Context, v *domain.VerificationCode) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal verification code: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Consume deletes the code for email if it matches and is still live.
// It reports whether a code was consumed. The match and delete happen in one
// conditional DeleteItem, so of several concurrent calls at most one wins.
func (r *VerificationRepo) Consume(ctx context.Context, email, code string, now time.Time) (bool, error) {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldEmail, email),
		ConditionExpression: aws.String("#c = :c AND #e > :now"),
		ExpressionAttributeNames: map[string]string{
			"#c": fieldCode,
			"#e": fieldExpiresAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c":   &types.AttributeValueMemberS{Value: code},
			":now": numValue(now.Unix()),
		},
	})
	if isConditionFailed(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteExpired removes every code whose expiry is before now and returns
// how many were removed. Each delete re-checks the expiry so a code replaced
// between scan and delete survives.
func (r *VerificationRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		FilterExpression:         aws.String("#e < :now"),
		ProjectionExpression:     aws.String("#k"),
		ExpressionAttributeNames: map[string]string{"#e": fieldExpiresAt, "#k": fieldEmail},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": numValue(now.Unix()),
		},
	})
	deleted := 0
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return deleted, err
		}
		for _, item := range page.Items {
			emailAttr, ok := item[fieldEmail].(*types.AttributeValueMemberS)
			if !ok {
				continue
			}
			_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName:                aws.String(r.tableName),
				Key:                      strKey(fieldEmail, emailAttr.Value),
				ConditionExpression:      aws.String("#e < :now"),
				ExpressionAttributeNames: map[string]string{"#e": fieldExpiresAt},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":now": numValue(now.Unix()),
				},
			})
			if isConditionFailed(err) {
				slog.Debug("expired code replaced before sweep", "email", emailAttr.Value)
				continue
			}
			if err != nil {
				return deleted, err
			}
			deleted++
		}
	}
	return deleted, nil
}
