package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/levenlabs/go-lflag"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/raterudder/ptxhub/pkg/assumptions"
	"github.com/raterudder/ptxhub/pkg/log"
	"github.com/raterudder/ptxhub/pkg/types"
)

// FirestoreProvider implements the Database interface using Google Cloud
// Firestore. Documents hold their payload as a JSON string in the "json"
// field.
//
// Layout:
//
//	scenarios/{id}                    scenario without profiles
//	scenarios/{id}/profiles/{kind}    one hourly profile
//	scenarios/{id}/runs/{runID}       optimization run with its report
//	assumptions/{name}                assumption rows
//
// Profiles are split out since a full year of all four would come close to
// the document size limit.
type FirestoreProvider struct {
	client    *firestore.Client
	projectID string
	database  string
}

// configuredFirestore sets up the Firestore provider.
// It registers flags for configuration.
func configuredFirestore() *FirestoreProvider {
	projectID := lflag.String("firestore-project-id", "", "Google Cloud Project ID for Firestore")
	database := lflag.String("firestore-database", "", "Google Cloud Firestore Database")
	emulator := lflag.String("firestore-emulator", "", "Use Firestore emulator")

	f := &FirestoreProvider{}

	lflag.Do(func() {
		f.projectID = *projectID
		f.database = *database

		// set this because that's how firestore client expects it
		if *emulator != "" {
			os.Setenv("FIRESTORE_EMULATOR_HOST", *emulator)
		}
	})

	return f
}

// Validate checks if the provider is properly configured.
func (f *FirestoreProvider) Validate() error {
	// an empty project ID is detected from the environment
	return nil
}

// Init initializes the Firestore client.
// This must be called before using the provider methods.
func (f *FirestoreProvider) Init(ctx context.Context) error {
	projectID := f.projectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	database := f.database
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database)
	if err != nil {
		return fmt.Errorf("failed to create firestore client (project=%s, database=%s): %w", projectID, database, err)
	}
	f.client = client
	return nil
}

// Close closes the Firestore client connection.
func (f *FirestoreProvider) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func (f *FirestoreProvider) scenarioDoc(scenarioID string) (*firestore.DocumentRef, error) {
	if scenarioID == "" {
		return nil, fmt.Errorf("scenarioID cannot be empty")
	}
	return f.client.Collection("scenarios").Doc(scenarioID), nil
}

func (f *FirestoreProvider) getCollection(scenarioID, name string) (*firestore.CollectionRef, error) {
	doc, err := f.scenarioDoc(scenarioID)
	if err != nil {
		return nil, err
	}
	return doc.Collection(name), nil
}

func decodeJSON(ctx context.Context, doc *firestore.DocumentSnapshot, v any) error {
	val, err := doc.DataAt("json")
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "doc missing json", slog.String("path", doc.Ref.Path), slog.Any("error", err))
		return fmt.Errorf("document %s missing 'json' field: %w", doc.Ref.ID, err)
	}
	jsonStr, ok := val.(string)
	if !ok {
		log.Ctx(ctx).WarnContext(ctx, "doc json not string", slog.String("path", doc.Ref.Path))
		return fmt.Errorf("document %s 'json' field is not a string", doc.Ref.ID)
	}
	if err := json.Unmarshal([]byte(jsonStr), v); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to unmarshal doc json", slog.String("path", doc.Ref.Path), slog.Any("error", err))
		return fmt.Errorf("failed to unmarshal document %s: %w", doc.Ref.ID, err)
	}
	return nil
}

// SaveScenario stores the scenario and its profiles in one transaction,
// replacing any previous version.
func (f *FirestoreProvider) SaveScenario(ctx context.Context, scenario types.Scenario) error {
	doc, err := f.scenarioDoc(scenario.ID)
	if err != nil {
		return err
	}

	bare := scenario
	bare.Profiles = types.Profiles{}
	scenarioJSON, err := json.Marshal(bare)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario %s: %w", scenario.ID, err)
	}
	profiles := make(map[types.ProfileKind]string)
	for _, kind := range types.ProfileKinds() {
		b, err := json.Marshal(scenario.Profiles.Get(kind))
		if err != nil {
			return fmt.Errorf("failed to marshal %s profile: %w", kind, err)
		}
		profiles[kind] = string(b)
	}

	err = f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Set(doc, map[string]interface{}{
			"json":    string(scenarioJSON),
			"name":    scenario.Name,
			"updated": time.Now(),
		}); err != nil {
			return err
		}
		for kind, s := range profiles {
			if err := tx.Set(doc.Collection("profiles").Doc(string(kind)), map[string]interface{}{
				"json": s,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save scenario %s: %w", scenario.ID, err)
	}
	return nil
}

// GetScenario retrieves a scenario together with its profiles.
func (f *FirestoreProvider) GetScenario(ctx context.Context, scenarioID string) (types.Scenario, error) {
	doc, err := f.scenarioDoc(scenarioID)
	if err != nil {
		return types.Scenario{}, err
	}
	snap, err := doc.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.Scenario{}, fmt.Errorf("%w: %s", ErrScenarioNotFound, scenarioID)
		}
		return types.Scenario{}, fmt.Errorf("failed to get scenario %s: %w", scenarioID, err)
	}
	var sc types.Scenario
	if err := decodeJSON(ctx, snap, &sc); err != nil {
		return types.Scenario{}, err
	}

	kinds := types.ProfileKinds()
	refs := make([]*firestore.DocumentRef, len(kinds))
	for i, kind := range kinds {
		refs[i] = doc.Collection("profiles").Doc(string(kind))
	}
	snaps, err := f.client.GetAll(ctx, refs)
	if err != nil {
		return types.Scenario{}, fmt.Errorf("failed to get profiles of scenario %s: %w", scenarioID, err)
	}
	for i, s := range snaps {
		if !s.Exists() {
			continue
		}
		var series []float64
		if err := decodeJSON(ctx, s, &series); err != nil {
			return types.Scenario{}, err
		}
		switch kinds[i] {
		case types.ProfilePVFixed:
			sc.Profiles.PVFixed = series
		case types.ProfilePVTracking:
			sc.Profiles.PVTracking = series
		case types.ProfileWind:
			sc.Profiles.Wind = series
		case types.ProfileWave:
			sc.Profiles.Wave = series
		}
	}
	return sc, nil
}

// ListScenarios retrieves all scenarios from the "scenarios" collection.
// Malformed documents are skipped.
func (f *FirestoreProvider) ListScenarios(ctx context.Context) ([]types.Scenario, error) {
	iter := f.client.Collection("scenarios").OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var scenarios []types.Scenario
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating scenarios: %w", err)
		}
		var sc types.Scenario
		if err := decodeJSON(ctx, doc, &sc); err != nil {
			continue
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

// SaveRun stores a run under its scenario.
func (f *FirestoreProvider) SaveRun(ctx context.Context, run types.Run) error {
	if run.ID == "" {
		return fmt.Errorf("runID cannot be empty")
	}
	coll, err := f.getCollection(run.ScenarioID, "runs")
	if err != nil {
		return err
	}
	runJSON, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run %s: %w", run.ID, err)
	}
	_, err = coll.Doc(run.ID).Set(ctx, map[string]interface{}{
		"json":    string(runJSON),
		"status":  string(run.Status),
		"tsStart": run.TSStart,
	})
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun retrieves a single run.
func (f *FirestoreProvider) GetRun(ctx context.Context, scenarioID, runID string) (types.Run, error) {
	coll, err := f.getCollection(scenarioID, "runs")
	if err != nil {
		return types.Run{}, err
	}
	if runID == "" {
		return types.Run{}, fmt.Errorf("runID cannot be empty")
	}
	doc, err := coll.Doc(runID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return types.Run{}, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	var run types.Run
	if err := decodeJSON(ctx, doc, &run); err != nil {
		return types.Run{}, err
	}
	return run, nil
}

// ListRuns retrieves the runs of a scenario, newest first.
func (f *FirestoreProvider) ListRuns(ctx context.Context, scenarioID string) ([]types.Run, error) {
	coll, err := f.getCollection(scenarioID, "runs")
	if err != nil {
		return nil, err
	}
	// firestore automatically creates indexes for top-level fields
	iter := coll.OrderBy("tsStart", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var runs []types.Run
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating runs: %w", err)
		}
		var run types.Run
		if err := decodeJSON(ctx, doc, &run); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// GetAssumptions retrieves a named assumption table.
func (f *FirestoreProvider) GetAssumptions(ctx context.Context, name string) ([]assumptions.Row, error) {
	if name == "" {
		return nil, fmt.Errorf("assumptions name cannot be empty")
	}
	doc, err := f.client.Collection("assumptions").Doc(name).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrAssumptionsNotFound, name)
		}
		return nil, fmt.Errorf("failed to get assumptions %s: %w", name, err)
	}
	var rows []assumptions.Row
	if err := decodeJSON(ctx, doc, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SetAssumptions stores a named assumption table, replacing any previous
// version.
func (f *FirestoreProvider) SetAssumptions(ctx context.Context, name string, rows []assumptions.Row) error {
	if name == "" {
		return fmt.Errorf("assumptions name cannot be empty")
	}
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal assumptions %s: %w", name, err)
	}
	_, err = f.client.Collection("assumptions").Doc(name).Set(ctx, map[string]interface{}{
		"json":    string(rowsJSON),
		"updated": time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to save assumptions %s: %w", name, err)
	}
	return nil
}
