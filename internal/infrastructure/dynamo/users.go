package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-menu-auth/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
// Email uniqueness is enforced by a guard item keyed "email#<email>" written
// in the same transaction as the user.
type UserRepo struct {
	client    API
	tableName string
}

func NewUserRepo(client API, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

// Create inserts u, failing with ErrConflict when its email or id is taken.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	guard := map[string]types.AttributeValue{
		fieldUserID:  &types.AttributeValueMemberS{Value: emailGuardPrefix + u.Email},
		fieldOwnerID: &types.AttributeValueMemberS{Value: u.UserID},
	}
	notExists := aws.String("attribute_not_exists(" + fieldUserID + ")")
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{TableName: aws.String(r.tableName), Item: guard, ConditionExpression: notExists}},
			{Put: &types.Put{TableName: aws.String(r.tableName), Item: item, ConditionExpression: notExists}},
		},
	})
	if isTxConditionFailed(err) {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	return err
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	item, err := r.getItem(ctx, userID)
	if err != nil {
		return nil, err
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail resolves the email through its guard item rather than
// email-index, so a user is readable as soon as Create returns.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	guard, err := r.getItem(ctx, emailGuardPrefix+email)
	if err != nil {
		return nil, err
	}
	owner, ok := guard[fieldOwnerID].(*types.AttributeValueMemberS)
	if !ok || owner.Value == "" {
		return nil, fmt.Errorf("email guard for %s has no owner", email)
	}
	return r.Get(ctx, owner.Value)
}

func (r *UserRepo) getItem(ctx context.Context, userID string) (map[string]types.AttributeValue, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldUserID, userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return out.Item, nil
}

func (r *UserRepo) MarkEmailVerified(ctx context.Context, userID string) error {
	return r.update(ctx, userID, map[string]interface{}{fieldEmailVerified: true})
}

func (r *UserRepo) update(ctx context.Context, userID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldUserID, userID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(" + fieldUserID + ")"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return err
}
