package synth

import "strings"

// BuildCommonResource renders the shared keyword resource consumed by every
// generated suite. Callers pass operation names in a deterministic order.
func BuildCommonResource(operations []string) string {
	var b strings.Builder
	b.WriteString("*** Settings ***\n")
	b.WriteString("Documentation     Common keywords and variables for " + ToolName + " tests\n")
	b.WriteString("Library           Process\n")
	b.WriteString("Library           OperatingSystem\n")
	b.WriteString("Library           String\n")
	b.WriteString("Library           Collections\n")
	b.WriteString("\n")

	b.WriteString("*** Variables ***\n")
	b.WriteString(toolVar + "      " + ToolName + "\n")
	b.WriteString("${DEFAULT_TIMEOUT}      120\n")
	b.WriteString("${DOCKER_IMAGE}         " + ToolName + ":latest\n")
	b.WriteString("@{ALL_OPERATIONS}       " + strings.Join(operations, sep) + "\n")
	b.WriteString("\n")

	b.WriteString("*** Keywords ***\n")
	b.WriteString("Run Service Console Operation\n")
	b.WriteString(sep + "[Documentation]" + sep + "Run a " + ToolName + " operation and return the result\n")
	b.WriteString(sep + "[Arguments]" + sep + "${operation}" + sep + "@{args}\n")
	b.WriteString(sep + "${result}=" + sep + "Run Process" + sep + toolVar + sep + "run" + sep + "${operation}" + sep + "@{args}\n")
	b.WriteString(sep + "RETURN" + sep + "${result}\n")
	b.WriteString("\n")
	b.WriteString("Run Service Console Operation With Dry Run\n")
	b.WriteString(sep + "[Documentation]" + sep + "Run a " + ToolName + " operation in dry-run mode\n")
	b.WriteString(sep + "[Arguments]" + sep + "${operation}" + sep + "@{args}\n")
	b.WriteString(sep + "${result}=" + sep + "Run Process" + sep + toolVar + sep + "run" + sep + "${operation}" + sep + "@{args}" + sep + "--dry-run\n")
	b.WriteString(sep + "RETURN" + sep + "${result}\n")
	b.WriteString("\n")
	b.WriteString("Operation Should Succeed\n")
	b.WriteString(sep + "[Documentation]" + sep + "Verify the operation completed successfully\n")
	b.WriteString(sep + "[Arguments]" + sep + "${result}\n")
	b.WriteString(sep + "Should Be Equal As Integers" + sep + "${result.rc}" + sep + "0\n")
	b.WriteString(sep + "Should Not Contain" + sep + "${result.stderr}" + sep + "Error\n")
	b.WriteString("\n")
	b.WriteString("Operation Should Fail\n")
	b.WriteString(sep + "[Documentation]" + sep + "Verify the operation failed as expected\n")
	b.WriteString(sep + "[Arguments]" + sep + "${result}\n")
	b.WriteString(sep + "Should Not Be Equal As Integers" + sep + "${result.rc}" + sep + "0\n")
	b.WriteString("\n")
	b.WriteString("Operation Should Fail With Message\n")
	b.WriteString(sep + "[Documentation]" + sep + "Verify the operation failed with a specific error message\n")
	b.WriteString(sep + "[Arguments]" + sep + "${result}" + sep + "${message}\n")
	b.WriteString(sep + "Should Not Be Equal As Integers" + sep + "${result.rc}" + sep + "0\n")
	b.WriteString(sep + "Should Contain" + sep + "${result.stderr}" + sep + "${message}\n")
	b.WriteString("\n")
	b.WriteString("Verify Docker Is Available\n")
	b.WriteString(sep + "[Documentation]" + sep + "Check that Docker is installed and running\n")
	b.WriteString(sep + "${result}=" + sep + "Run Process" + sep + "docker" + sep + "info\n")
	b.WriteString(sep + "Should Be Equal As Integers" + sep + "${result.rc}" + sep + "0\n")
	b.WriteString("\n")
	b.WriteString("Verify Service Console Is Installed\n")
	b.WriteString(sep + "[Documentation]" + sep + "Check that " + ToolName + " CLI is available\n")
	b.WriteString(sep + "${result}=" + sep + "Run Process" + sep + toolVar + sep + "--version\n")
	b.WriteString(sep + "Should Be Equal As Integers" + sep + "${result.rc}" + sep + "0\n")
	b.WriteString(sep + "RETURN" + sep + "${result.stdout}\n")
	return b.String()
}

// BuildSuiteInit renders the __init__.robot suite initialization file.
// Timestamps live in the scan metadata, not here, so re-generation without
// model changes stays diff-free.
func BuildSuiteInit(operations []string) string {
	var b strings.Builder
	b.WriteString("*** Settings ***\n")
	b.WriteString("Documentation     Service Console End-to-End Test Suite\n")
	b.WriteString("...               Auto-generated; do not edit by hand.\n")
	b.WriteString("...               Operations tested: " + strings.Join(operations, ", ") + "\n")
	b.WriteString("Resource          common.resource\n")
	b.WriteString("Suite Setup       Suite Level Setup\n")
	b.WriteString("Suite Teardown    Suite Level Teardown\n")
	b.WriteString("\n")
	b.WriteString("*** Keywords ***\n")
	b.WriteString("Suite Level Setup\n")
	b.WriteString(sep + "[Documentation]" + sep + "Setup for the entire test suite\n")
	b.WriteString(sep + "Verify Service Console Is Installed\n")
	b.WriteString(sep + "Log" + sep + "Test suite initialized\n")
	b.WriteString("\n")
	b.WriteString("Suite Level Teardown\n")
	b.WriteString(sep + "[Documentation]" + sep + "Teardown for the entire test suite\n")
	b.WriteString(sep + "Log" + sep + "Test suite completed\n")
	return b.String()
}
