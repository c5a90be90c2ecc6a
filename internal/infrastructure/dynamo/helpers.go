package dynamo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// itemKey is the (id, creationTime) primary key of a queue item.
func itemKey(id, creationTime string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		fieldID:           &types.AttributeValueMemberS{Value: id},
		fieldCreationTime: &types.AttributeValueMemberS{Value: creationTime},
	}
}

// assignments accumulates "SET a = b" clauses in call order, using
// placeholders for every attribute name and value.
type assignments struct {
	clauses []string
	names   map[string]string
	values  map[string]types.AttributeValue
	err     error
}

func newAssignments() *assignments {
	return &assignments{names: map[string]string{}, values: map[string]types.AttributeValue{}}
}

func (a *assignments) set(field string, v any) *assignments {
	if a.err != nil {
		return a
	}
	av, err := attributevalue.Marshal(v)
	if err != nil {
		a.err = fmt.Errorf("marshal %s: %w", field, err)
		return a
	}
	n := len(a.clauses)
	name, val := fmt.Sprintf("#a%d", n), fmt.Sprintf(":a%d", n)
	a.names[name] = field
	a.values[val] = av
	a.clauses = append(a.clauses, name+" = "+val)
	return a
}

// expression returns the SET expression, or an error when nothing was set.
func (a *assignments) expression() (string, error) {
	if a.err != nil {
		return "", a.err
	}
	if len(a.clauses) == 0 {
		return "", errors.New("no fields to update")
	}
	return "SET " + strings.Join(a.clauses, ", "), nil
}
