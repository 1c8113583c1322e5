/*
Package domain contains the core data model of the parley dialogue engine.

It defines the closed set of node variants a chain is built from, the control
flow Instruction each node produces when displayed, the Chain with its label
table, and the lifecycle events exchanged with presentation collaborators.
This package is kept free of I/O and of third-party dependencies.

# Key Entities

  - Chain: ordered nodes plus a case-insensitive label table.
  - Node: SpokenLine, Label, Jump, Exit, MethodCall, JumpMethodCall, Choice.
  - Instruction: Continue, Goto or Exit, optionally pausing for input.
  - ChoiceSlot: single-assignment result a choice presenter must lock once.
  - LifecycleHooks: subscriber callbacks fanned out and awaited by the driver.
*/
package domain
