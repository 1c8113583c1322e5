/*
Package ports defines the driven ports (interfaces) of the parley engine.

These interfaces decouple the driver from the collaborators it consults at
runtime, so chains, speakers and singleton instances can come from any backend.

# Key Interfaces

  - ChainLoader: loads compiled chains by name (memory, file, redis adapters).
  - SpeakerDirectory: resolves npc keys to display names and voice metadata.
  - SingletonResolver: finds the single live instance behind instance-bound dialogue functions.
*/
package ports
