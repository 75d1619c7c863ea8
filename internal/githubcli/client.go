package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/temirov/gmux/internal/execshell"
	"github.com/temirov/gmux/internal/githubauth"
)

const (
	apiSubcommandConstant                   = "api"
	paginateFlagConstant                    = "--paginate"
	gitCloneSubcommandConstant              = "clone"
	shallowCloneFlagConstant                = "--depth=1"
	authenticatedUserEndpointConstant       = "user"
	authenticatedUserReposEndpointConstant  = "user/repos"
	organizationReposEndpointTemplate       = "orgs/%s/repos"
	userReposEndpointTemplateConstant       = "users/%s/repos"
	endpointWithQueryTemplateConstant       = "%s?%s"
	cloneURLTemplateConstant                = "https://github.com/%s/%s.git"
	typeQueryParameterConstant              = "type"
	sortQueryParameterConstant              = "sort"
	directionQueryParameterConstant         = "direction"
	perPageQueryParameterConstant           = "per_page"
	allRepositoriesTypeConstant             = "all"
	ownerFieldNameConstant                  = "owner"
	repositoryFieldNameConstant             = "repository"
	loginFieldNameConstant                  = "login"
	requiredValueMessageConstant            = "value required"
	missingLoginMessageConstant             = "response did not include a login"
	executorNotConfiguredMessageConstant    = "github cli executor not configured"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	validateTokenOperationNameConstant      = OperationName("ValidateToken")
	listRepositoriesOperationNameConstant   = OperationName("ListRepositories")
	cloneRepositoryOperationNameConstant    = OperationName("CloneRepository")
	// DefaultPerPage is the page size requested when ListOptions leaves it unset.
	DefaultPerPage = 100
)

// OperationName describes a named GitHub workflow supported by the client.
type OperationName string

// Repository is the subset of GitHub repository attributes the commands display.
type Repository struct {
	Name    string `json:"name"`
	Private bool   `json:"private"`
}

// ListOptions configures ListRepositories queries. Sort and Direction apply to the authenticated
// user's own repositories only.
type ListOptions struct {
	PerPage   int
	Sort      string
	Direction string
}

// CommandExecutor is the minimal interface required from execshell.ShellExecutor.
type CommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor CommandExecutor
	token    string
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// NewClient constructs a GitHub CLI client. A non-empty token is handed to every gh invocation through
// the GH_TOKEN environment variable; otherwise gh uses its own stored credentials.
func NewClient(executor CommandExecutor, token string) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor, token: strings.TrimSpace(token)}, nil
}

// ValidateToken confirms the credentials are accepted by GitHub and returns the authenticated login.
func (client *Client) ValidateToken(executionContext context.Context) (string, error) {
	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, client.apiDetails(authenticatedUserEndpointConstant, false))
	if executionError != nil {
		return "", OperationError{Operation: validateTokenOperationNameConstant, Cause: executionError}
	}

	var response struct {
		Login string `json:"login"`
	}
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return "", ResponseDecodingError{Operation: validateTokenOperationNameConstant, Cause: decodingError}
	}

	login := strings.TrimSpace(response.Login)
	if len(login) == 0 {
		return "", ResponseDecodingError{Operation: validateTokenOperationNameConstant, Cause: InvalidInputError{FieldName: loginFieldNameConstant, Message: missingLoginMessageConstant}}
	}
	return login, nil
}

// ListRepositories returns every repository of the owner. The authenticated user's own repositories
// include private ones; other owners are tried as an organization first and then as a user.
func (client *Client) ListRepositories(executionContext context.Context, owner string, options ListOptions) ([]Repository, error) {
	ownerLogin := strings.TrimSpace(owner)
	if len(ownerLogin) == 0 {
		return nil, InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}

	authenticatedLogin, validationError := client.ValidateToken(executionContext)
	if validationError != nil {
		return nil, OperationError{Operation: listRepositoriesOperationNameConstant, Cause: validationError}
	}

	perPage := options.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	if strings.EqualFold(authenticatedLogin, ownerLogin) {
		query := url.Values{}
		query.Set(typeQueryParameterConstant, allRepositoriesTypeConstant)
		setIfPresent(query, sortQueryParameterConstant, options.Sort)
		setIfPresent(query, directionQueryParameterConstant, options.Direction)
		query.Set(perPageQueryParameterConstant, strconv.Itoa(perPage))
		return client.listEndpoint(executionContext, fmt.Sprintf(endpointWithQueryTemplateConstant, authenticatedUserReposEndpointConstant, query.Encode()))
	}

	query := url.Values{}
	query.Set(perPageQueryParameterConstant, strconv.Itoa(perPage))
	escapedOwner := url.PathEscape(ownerLogin)

	organizationEndpoint := fmt.Sprintf(endpointWithQueryTemplateConstant, fmt.Sprintf(organizationReposEndpointTemplate, escapedOwner), query.Encode())
	repositories, organizationError := client.listEndpoint(executionContext, organizationEndpoint)
	if organizationError == nil {
		return repositories, nil
	}

	var decodingError ResponseDecodingError
	if errors.As(organizationError, &decodingError) {
		return nil, organizationError
	}

	userEndpoint := fmt.Sprintf(endpointWithQueryTemplateConstant, fmt.Sprintf(userReposEndpointTemplateConstant, escapedOwner), query.Encode())
	return client.listEndpoint(executionContext, userEndpoint)
}

// CloneRepository performs a shallow clone of owner/name into the directory.
func (client *Client) CloneRepository(executionContext context.Context, owner string, name string, directory string) error {
	ownerLogin := strings.TrimSpace(owner)
	if len(ownerLogin) == 0 {
		return InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	repositoryName := strings.TrimSpace(name)
	if len(repositoryName) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitCloneSubcommandConstant, shallowCloneFlagConstant, CloneURL(ownerLogin, repositoryName)},
		WorkingDirectory: directory,
	}
	if _, executionError := client.executor.ExecuteGit(executionContext, commandDetails); executionError != nil {
		return OperationError{Operation: cloneRepositoryOperationNameConstant, Cause: executionError}
	}
	return nil
}

// CloneURL returns the HTTPS clone URL of owner/name on github.com.
func CloneURL(owner string, name string) string {
	return fmt.Sprintf(cloneURLTemplateConstant, owner, name)
}

func (client *Client) listEndpoint(executionContext context.Context, endpoint string) ([]Repository, error) {
	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, client.apiDetails(endpoint, true))
	if executionError != nil {
		return nil, OperationError{Operation: listRepositoriesOperationNameConstant, Cause: executionError}
	}

	repositories, decodingError := decodePaginatedRepositories(executionResult.StandardOutput)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: listRepositoriesOperationNameConstant, Cause: decodingError}
	}
	return repositories, nil
}

func (client *Client) apiDetails(endpoint string, paginate bool) execshell.CommandDetails {
	arguments := []string{apiSubcommandConstant}
	if paginate {
		arguments = append(arguments, paginateFlagConstant)
	}
	arguments = append(arguments, endpoint)

	details := execshell.CommandDetails{Arguments: arguments}
	if len(client.token) > 0 {
		details.EnvironmentVariables = map[string]string{githubauth.EnvGitHubCLIToken: client.token}
	}
	return details
}

// decodePaginatedRepositories reads the concatenated JSON arrays gh api --paginate prints, one per page.
func decodePaginatedRepositories(output string) ([]Repository, error) {
	repositories := make([]Repository, 0)
	decoder := json.NewDecoder(strings.NewReader(output))
	for {
		var page []Repository
		decodeError := decoder.Decode(&page)
		if errors.Is(decodeError, io.EOF) {
			return repositories, nil
		}
		if decodeError != nil {
			return nil, decodeError
		}
		repositories = append(repositories, page...)
	}
}

func setIfPresent(query url.Values, key string, value string) {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return
	}
	query.Set(key, trimmedValue)
}
