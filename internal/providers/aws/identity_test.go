package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

type mockSTSClient struct {
	out *sts.GetCallerIdentityOutput
	err error
}

func (m *mockSTSClient) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return m.out, m.err
}

func TestCallerIdentity(t *testing.T) {
	client := &mockSTSClient{out: &sts.GetCallerIdentityOutput{
		Account: aws.String("123456789012"),
		Arn:     aws.String("arn:aws:sts::123456789012:assumed-role/BedrockInvoker/0a1b2c"),
		UserId:  aws.String("AROAEXAMPLE:0a1b2c"),
	}}

	id, err := CallerIdentity(context.Background(), client)
	if err != nil {
		t.Fatal(err)
	}
	if id.Account != "123456789012" {
		t.Errorf("Account = %q", id.Account)
	}
	if id.ARN != "arn:aws:sts::123456789012:assumed-role/BedrockInvoker/0a1b2c" {
		t.Errorf("ARN = %q", id.ARN)
	}
	if id.UserID != "AROAEXAMPLE:0a1b2c" {
		t.Errorf("UserID = %q", id.UserID)
	}
}

func TestCallerIdentity_Error(t *testing.T) {
	cause := errors.New("ExpiredToken")
	_, err := CallerIdentity(context.Background(), &mockSTSClient{err: cause})
	if !errors.Is(err, cause) {
		t.Errorf("error = %v, want wrapped cause", err)
	}
}
