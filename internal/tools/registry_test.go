package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NotNil(t, reg)
	require.Equal(t, 0, reg.Count())
}

func echoTool(name string, items ...ContentItem) *Tool {
	return &Tool{
		Name:     name,
		Category: CategoryMeta,
		Execute: func(ctx context.Context, args map[string]any) ([]ContentItem, error) {
			return items, nil
		},
	}
}

func TestRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool("test_tool", TextItem("success"))))

	got := reg.Get("test_tool")
	require.NotNil(t, got)
	require.Equal(t, "test_tool", got.Name)
}

func TestRegisterDuplicate(t *testing.T) {
	reg := NewRegistry()
	tool := echoTool("dupe")
	require.NoError(t, reg.Register(tool))
	require.ErrorIs(t, reg.Register(tool), ErrToolAlreadyRegistered)
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRegistry()

	err := reg.Register(&Tool{Name: "", Execute: func(context.Context, map[string]any) ([]ContentItem, error) { return nil, nil }})
	require.ErrorIs(t, err, ErrToolNameEmpty)

	err = reg.Register(&Tool{Name: "test", Execute: nil})
	require.ErrorIs(t, err, ErrToolExecuteNil)
}

func TestGetByCategory(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(&Tool{Name: "click", Category: CategoryInput, Execute: noop})
	reg.MustRegister(&Tool{Name: "type_text", Category: CategoryInput, Execute: noop})
	reg.MustRegister(&Tool{Name: "run_command", Category: CategorySystem, Execute: noop})

	input := reg.GetByCategory(CategoryInput)
	require.Len(t, input, 2)
	require.Equal(t, "click", input[0].Name) // name-sorted
}

func noop(ctx context.Context, args map[string]any) ([]ContentItem, error) { return nil, nil }

func TestExecute(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(&Tool{
		Name:     "echo",
		Category: CategoryMeta,
		Execute: func(ctx context.Context, args map[string]any) ([]ContentItem, error) {
			msg, _ := args["message"].(string)
			return []ContentItem{TextItem("Echo: " + msg)}, nil
		},
		Schema: Schema{Required: []string{"message"}, Properties: map[string]Property{"message": {Type: "string"}}},
	})

	result, err := reg.Execute(context.Background(), "echo", map[string]any{"message": "hello"})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	require.Equal(t, "Echo: hello", result.Items[0].Text)

	_, err = reg.Execute(context.Background(), "echo", map[string]any{})
	require.ErrorIs(t, err, ErrMissingRequiredArg)

	_, err = reg.Execute(context.Background(), "nonexistent", map[string]any{})
	require.ErrorIs(t, err, ErrToolNotFound)
}
