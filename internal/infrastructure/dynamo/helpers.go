package dynamo

import (
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Attribute names of the otps table.
const (
	fieldEmail     = "email"
	fieldCodeHash  = "code_hash"
	fieldExpiresAt = "expires_at"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// unixValue encodes a Unix-seconds timestamp the way attributevalue does for int64.
func unixValue(sec int64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(sec, 10)}
}

// sameHashCondition guards a delete so it only removes the record that was read.
func sameHashCondition(hash string) (string, map[string]string, map[string]types.AttributeValue) {
	return "#h = :h",
		map[string]string{"#h": fieldCodeHash},
		map[string]types.AttributeValue{":h": &types.AttributeValueMemberS{Value: hash}}
}

// expiredCondition matches records whose expiry is strictly before now.
func expiredCondition(now int64) (string, map[string]string, map[string]types.AttributeValue) {
	return "#e < :now",
		map[string]string{"#e": fieldExpiresAt},
		map[string]types.AttributeValue{":now": unixValue(now)}
}
