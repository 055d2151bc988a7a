package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"crud-microservices/application/ports"
	"crud-microservices/domain/entities"
	apperrors "crud-microservices/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAPI records the last input of each call and answers from canned outputs.
type fakeAPI struct {
	getOut    *dynamodb.GetItemOutput
	putIn     *dynamodb.PutItemInput
	updateIn  *dynamodb.UpdateItemInput
	updateOut *dynamodb.UpdateItemOutput
	updateErr error
	deleteIn  *dynamodb.DeleteItemInput
	deleteErr error
	scanPages []*dynamodb.ScanOutput
	scanCalls int
	described string
	err       error
}

func (f *fakeAPI) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.getOut == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return f.getOut, nil
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putIn = in
	return &dynamodb.PutItemOutput{}, f.err
}

func (f *fakeAPI) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updateIn = in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updateOut == nil {
		return &dynamodb.UpdateItemOutput{}, nil
	}
	return f.updateOut, nil
}

func (f *fakeAPI) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.deleteIn = in
	return &dynamodb.DeleteItemOutput{}, f.deleteErr
}

func (f *fakeAPI) Scan(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	page := f.scanPages[f.scanCalls]
	f.scanCalls++
	return page, nil
}

func (f *fakeAPI) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.described = aws.ToString(in.TableName)
	return &dynamodb.DescribeTableOutput{}, f.err
}

func newTestStore(api *fakeAPI) *RecordStore {
	return NewRecordStore(api, map[string]string{
		ports.TableUsers:    "users-test",
		ports.TableProducts: "products-test",
		ports.TableOrders:   "orders-test",
	}, zap.NewNop())
}

func str(v string) types.AttributeValue { return &types.AttributeValueMemberS{Value: v} }
func num(v string) types.AttributeValue { return &types.AttributeValueMemberN{Value: v} }

func TestGet_DecodesJSONNamedAttributes(t *testing.T) {
	api := &fakeAPI{getOut: &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"id":        str("p-1"),
		"name":      str("Lamp"),
		"price":     num("12.5"),
		"category":  str("Home"),
		"stock":     num("3"),
		"createdBy": str("seller"),
	}}}
	store := newTestStore(api)

	var p entities.Product
	require.NoError(t, store.Get(context.Background(), ports.TableProducts, "p-1", &p))

	assert.Equal(t, "Lamp", p.Name)
	assert.Equal(t, 12.5, p.Price)
	require.NotNil(t, p.Stock)
	assert.Equal(t, 3, *p.Stock)
	assert.Equal(t, "seller", p.CreatedBy)
}

func TestGet_MissingItemIsNotFound(t *testing.T) {
	store := newTestStore(&fakeAPI{})

	var u entities.User
	err := store.Get(context.Background(), ports.TableUsers, "nope", &u)

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, "User not found", apperrors.GetAppError(err).Message)
}

func TestGet_UnknownTable(t *testing.T) {
	store := newTestStore(&fakeAPI{})

	err := store.Get(context.Background(), "widgets", "1", &struct{}{})

	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.GetAppError(err).Type)
}

func TestPut_UsesPhysicalTableAndOmitsNilOptionals(t *testing.T) {
	api := &fakeAPI{}
	store := newTestStore(api)

	user := &entities.User{ID: "u-1", Name: "Jane Doe", Email: "jane@example.com", CreatedAt: time.Now()}
	require.NoError(t, store.Put(context.Background(), ports.TableUsers, user))

	require.NotNil(t, api.putIn)
	assert.Equal(t, "users-test", aws.ToString(api.putIn.TableName))
	assert.Equal(t, str("u-1"), api.putIn.Item["id"])
	assert.Contains(t, api.putIn.Item, "email")
	assert.NotContains(t, api.putIn.Item, "age")
	assert.NotContains(t, api.putIn.Item, "phone")
}

func TestUpdate_BuildsGuardedExpression(t *testing.T) {
	api := &fakeAPI{updateOut: &dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{
		"id":    str("p-1"),
		"stock": num("1"),
	}}}
	store := newTestStore(api)

	var p entities.Product
	err := store.Update(context.Background(), ports.TableProducts, "p-1", ports.Update{
		Set:       map[string]interface{}{"name": "Desk lamp"},
		Remove:    []string{"description"},
		Increment: map[string]int{"stock": -2},
	}, &p, ports.AtLeast("stock", 2))
	require.NoError(t, err)

	in := api.updateIn
	require.NotNil(t, in)
	assert.Equal(t, "products-test", aws.ToString(in.TableName))
	assert.Contains(t, aws.ToString(in.UpdateExpression), "SET")
	assert.Contains(t, aws.ToString(in.UpdateExpression), "REMOVE")
	assert.Contains(t, aws.ToString(in.UpdateExpression), "ADD")
	assert.Contains(t, aws.ToString(in.ConditionExpression), "attribute_exists")
	assert.Contains(t, aws.ToString(in.ConditionExpression), ">=")
	assert.Equal(t, types.ReturnValueAllNew, in.ReturnValues)
	require.NotNil(t, p.Stock)
	assert.Equal(t, 1, *p.Stock)
}

func TestUpdate_EmptyUpdateIsRejected(t *testing.T) {
	api := &fakeAPI{}
	store := newTestStore(api)

	err := store.Update(context.Background(), ports.TableUsers, "u-1", ports.Update{}, nil)

	assert.True(t, apperrors.IsValidation(err))
	assert.Nil(t, api.updateIn)
}

func TestConditionalFailures(t *testing.T) {
	t.Run("missing record", func(t *testing.T) {
		api := &fakeAPI{deleteErr: &types.ConditionalCheckFailedException{Message: aws.String("failed")}}
		store := newTestStore(api)

		err := store.Delete(context.Background(), ports.TableProducts, "p-1", ports.Equals("createdBy", "me"))

		assert.True(t, apperrors.IsNotFound(err))
		assert.Equal(t, "Product not found", apperrors.GetAppError(err).Message)
	})

	t.Run("guard does not hold", func(t *testing.T) {
		api := &fakeAPI{updateErr: &types.ConditionalCheckFailedException{
			Message: aws.String("failed"),
			Item:    map[string]types.AttributeValue{"id": str("p-1")},
		}}
		store := newTestStore(api)

		err := store.Update(context.Background(), ports.TableProducts, "p-1",
			ports.Update{Set: map[string]interface{}{"name": "x"}}, nil, ports.Equals("createdBy", "me"))

		assert.True(t, errors.Is(err, ports.ErrConditionFailed))
	})

	t.Run("other failures are upstream", func(t *testing.T) {
		api := &fakeAPI{deleteErr: errors.New("throttled")}
		store := newTestStore(api)

		err := store.Delete(context.Background(), ports.TableOrders, "o-1")

		appErr := apperrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.ErrorTypeUpstream, appErr.Type)
	})
}

func TestScanAndCount_FollowPages(t *testing.T) {
	pages := func() []*dynamodb.ScanOutput {
		return []*dynamodb.ScanOutput{
			{
				Items:            []map[string]types.AttributeValue{{"id": str("a")}, {"id": str("b")}},
				Count:            2,
				LastEvaluatedKey: map[string]types.AttributeValue{"id": str("b")},
			},
			{
				Items: []map[string]types.AttributeValue{{"id": str("c")}},
				Count: 1,
			},
		}
	}

	store := newTestStore(&fakeAPI{scanPages: pages()})
	var users []entities.User
	require.NoError(t, store.Scan(context.Background(), ports.TableUsers, &users))
	require.Len(t, users, 3)
	assert.Equal(t, "c", users[2].ID)

	store = newTestStore(&fakeAPI{scanPages: pages()})
	n, err := store.Count(context.Background(), ports.TableUsers)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPing_DescribesUsersTable(t *testing.T) {
	api := &fakeAPI{}
	store := newTestStore(api)

	require.NoError(t, store.Ping(context.Background()))
	assert.Equal(t, "users-test", api.described)

	api.err = errors.New("no route to host")
	assert.Error(t, store.Ping(context.Background()))
}
