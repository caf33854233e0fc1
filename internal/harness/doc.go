// Package harness provides scenario-based conformance testing for atlas
// generation.
//
// A scenario names a model file, the build options and the expected
// outcome. The harness compiles the model, builds the atlas, stores it in
// an in-memory database and reads it back, then checks the expectations.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: four_node
//	description: "What this scenario validates"
//	model: ../models/four_node.cue
//	options:
//	  workers: 3
//	  ordering: first-fastest
//	expect:
//	  dimension: 4
//	  regions: 24
//	  upper: [30, 200, 30, 30]
//	  boxes:
//	    - index: 2
//	      lower: [5, 0, 0, 0]
//	      upper: [30, 4, 4, 10]
//	      sigma_lower: [20, 40, 20, 0]
//	      sigma_upper: [20, 40, 20, 0]
//	golden: true
//
// A failing build is asserted with an atlas error code instead:
//
//	expect:
//	  error: UNRESOLVED_SIGNATURE
//
// # Golden Files
//
// With golden: true the atlas is rendered as XML and compared against
// golden/<scenario file stem>.golden beside the scenario file. The XML
// rendering prints every number deterministically, so golden files are
// stable across worker counts.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/toggle.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
