package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/campus-otp/internal/domain"
	"github.com/campus-otp/internal/pkg/otpcode"
)

// API is the subset of *dynamodb.Client used by OTPRepo.
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// OTPRepo stores one OTP record per identity.
// PK: email. expires_at is the table TTL attribute.
type OTPRepo struct {
	client    API
	tableName string
}

func NewOTPRepo(client API, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

func (r *OTPRepo) FindByIdentity(ctx context.Context, identity string) (*domain.OTPRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldEmail, identity),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("otp for %s: %w", identity, domain.ErrNotFound)
	}
	var rec domain.OTPRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal otp: %w", err)
	}
	return &rec, nil
}

// FindByIdentityAndCode returns the record only if code matches its hash.
func (r *OTPRepo) FindByIdentityAndCode(ctx context.Context, identity, code string) (*domain.OTPRecord, error) {
	rec, err := r.FindByIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !otpcode.Matches(rec.CodeHash, code) {
		return nil, fmt.Errorf("otp for %s: %w", identity, domain.ErrNotFound)
	}
	return rec, nil
}

func (r *OTPRepo) Upsert(ctx context.Context, rec *domain.OTPRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *OTPRepo) DeleteByIdentity(ctx context.Context, identity string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldEmail, identity),
	})
	return err
}

// Consume deletes rec only if the stored code_hash still equals rec.CodeHash.
// A failed condition means another request consumed or replaced it first.
func (r *OTPRepo) Consume(ctx context.Context, rec *domain.OTPRecord) error {
	cond, names, values := sameHashCondition(rec.CodeHash)
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldEmail, rec.Identity),
		ConditionExpression:       aws.String(cond),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("otp for %s: %w", rec.Identity, domain.ErrNotFound)
	}
	return err
}

// PurgeExpired removes records whose expiry has passed. DynamoDB TTL deletion
// can lag by hours; this keeps the table tight when a sweep is configured.
func (r *OTPRepo) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	filter, names, values := expiredCondition(now.Unix())
	names["#k"] = fieldEmail
	names["#h"] = fieldCodeHash
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          aws.String(filter),
		ProjectionExpression:      aws.String("#k, #h"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})

	purged := 0
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return purged, fmt.Errorf("scan expired otps: %w", err)
		}
		for _, item := range page.Items {
			var rec domain.OTPRecord
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return purged, fmt.Errorf("unmarshal otp: %w", err)
			}
			ok, err := r.deleteExpired(ctx, &rec, now)
			if err != nil {
				return purged, err
			}
			if ok {
				purged++
			}
		}
	}
	return purged, nil
}

// deleteExpired skips records re-issued since the scan read them.
func (r *OTPRepo) deleteExpired(ctx context.Context, rec *domain.OTPRecord, now time.Time) (bool, error) {
	hashCond, names, values := sameHashCondition(rec.CodeHash)
	expCond, expNames, expValues := expiredCondition(now.Unix())
	for k, v := range expNames {
		names[k] = v
	}
	for k, v := range expValues {
		values[k] = v
	}
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldEmail, rec.Identity),
		ConditionExpression:       aws.String(hashCond + " AND " + expCond),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if isConditionFailed(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete expired otp: %w", err)
	}
	return true, nil
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
