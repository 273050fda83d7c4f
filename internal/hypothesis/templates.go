package hypothesis

import "github.com/faultline-dev/faultline/internal/severity"

// HypothesisTemplate is the fixed, per-hazard-class catalog entry the
// constructor fills in with a finding's concrete values. Placeholders
// like {mde}, {percentile}, {cache_lines}, {threshold}, {target_count}
// are substituted by Construct.
type HypothesisTemplate struct {
	HazardClass         severity.HazardClass
	H0Template          string
	H1Template          string
	Metric              MetricSpec
	RequiredCounters    []PMUCounter
	OptionalCounters    []PMUCounter
	DefaultMDE          float64
	ConfoundControls    []ConfoundControl
	InteractionEligible bool
}

// standardConfounds are the eight confound controls every template
// carries.
var standardConfounds = []ConfoundControl{
	{Variable: "cpu_frequency_governor", EnforcementCommand: "cpupower frequency-set -g performance"},
	{Variable: "turbo_boost", EnforcementCommand: "echo 1 > /sys/devices/system/cpu/intel_pstate/no_turbo"},
	{Variable: "c_states", EnforcementCommand: "cpupower idle-set -D 0"},
	{Variable: "cpu_pinning", EnforcementCommand: "taskset -c <core> <binary>"},
	{Variable: "transparent_huge_pages", EnforcementCommand: "echo never > /sys/kernel/mm/transparent_hugepage/enabled"},
	{Variable: "aslr", EnforcementCommand: "echo 0 > /proc/sys/kernel/randomize_va_space"},
	{Variable: "compile_flags", EnforcementCommand: "record exact CFLAGS/CXXFLAGS used to build the binary under test"},
	{Variable: "interrupt_isolation", EnforcementCommand: "echo <mask> > /proc/irq/default_smp_affinity"},
}

func counter(name string, tier CounterTier, justification string) PMUCounter {
	return PMUCounter{Name: name, Tier: tier, Justification: justification}
}

// Templates is the fixed catalog keyed by hazard class. Every recognized
// rule ID maps to exactly one entry via severity.RuleHazard.
var Templates = map[severity.HazardClass]HypothesisTemplate{
	severity.CacheLineSpan: {
		HazardClass: severity.CacheLineSpan,
		H0Template:  "Mean access latency for this structure is unaffected by its {cache_lines}-cache-line span.",
		H1Template:  "Mean access latency for this structure increases by at least {mde} due to its {cache_lines}-cache-line span.",
		Metric:      MetricSpec{Name: "access_latency", Unit: "ns", Percentile: "p50"},
		RequiredCounters: []PMUCounter{
			counter("mem_load_retired.l1_hit", Universal, "distinguishes cache-resident accesses from misses"),
			counter("mem_load_retired.l1_miss", Universal, "direct evidence of cross-line spill on access"),
		},
		OptionalCounters:    []PMUCounter{counter("offcore_response.all_data_rd.llc_miss", Extended, "confirms DRAM round-trip on the widest spans")},
		DefaultMDE:          0.05,
		ConfoundControls:    standardConfounds,
		InteractionEligible: true,
	},
	severity.FalseSharing: {
		HazardClass: severity.FalseSharing,
		H0Template:  "Concurrent access to co-located fields shows no excess cache-coherence traffic.",
		H1Template:  "Concurrent access to co-located fields on the same cache line incurs at least {mde} additional p99 latency from coherence invalidation.",
		Metric:      MetricSpec{Name: "op_latency", Unit: "ns", Percentile: "p99"},
		RequiredCounters: []PMUCounter{
			counter("mem_load_l3_hit_retired.xsnp_hitm", Extended, "direct false-sharing signature: a remote modified-line snoop hit"),
		},
		OptionalCounters:    []PMUCounter{counter("offcore_response.demand_rfo.llc_hit.hitm_other_core", Uncore, "cross-socket confirmation of the same signature")},
		DefaultMDE:          0.05,
		ConfoundControls:    standardConfounds,
		InteractionEligible: true,
	},
	severity.AtomicOrdering: {
		HazardClass: severity.AtomicOrdering,
		H0Template:  "Relaxing this atomic's memory ordering below seq_cst does not change throughput.",
		H1Template:  "This seq_cst atomic costs at least {mde} throughput versus the weakest ordering the algorithm actually requires.",
		Metric:      MetricSpec{Name: "op_throughput", Unit: "ops/s", Percentile: "mean"},
		RequiredCounters: []PMUCounter{
			counter("mem_inst_retired.lock_loads", Standard, "counts locked/fenced memory instructions directly"),
		},
		OptionalCounters:    []PMUCounter{counter("cycle_activity.stalls_l1d_miss", Standard, "stalls consistent with a full memory fence")},
		DefaultMDE:          0.05,
		ConfoundControls:    standardConfounds,
		InteractionEligible: false,
	},
	severity.AtomicContention: {
		HazardClass: severity.AtomicContention,
		H0Template:  "Repeated atomic access to this location shows no contention-driven latency growth under load.",
		H1Template:  "Repeated atomic access to this location costs at least {mde} additional p99 latency as concurrent writers increase.",
		Metric:      MetricSpec{Name: "op_latency", Unit: "ns", Percentile: "p99"},
		RequiredCounters: []PMUCounter{
			counter("mem_inst_retired.lock_loads", Standard, "direct count of locked atomic RMW operations"),
		},
		OptionalCounters:    []PMUCounter{counter("mem_load_l3_hit_retired.xsnp_hitm", Extended, "coherence cost of repeated same-line CAS/fetch-add")},
		DefaultMDE:          0.05,
		ConfoundControls:    standardConfounds,
		InteractionEligible: true,
	},
	severity.LockContention: {
		HazardClass: severity.LockContention,
		H0Template:  "Acquiring this lock on the hot path adds no measurable latency versus a lock-free equivalent.",
		H1Template:  "Acquiring this lock on the hot path adds at least {mde} p99 latency under concurrent load.",
		Metric:      MetricSpec{Name: "op_latency", Unit: "ns", Percentile: "p99"},
		RequiredCounters: []PMUCounter{
			counter("mem_inst_retired.lock_loads", Standard, "locked instructions inside the mutex's internal CAS loop"),
		},
		OptionalCounters:    []PMUCounter{counter("br_misp_retired.all_branches", Universal, "spin-wait loops mispredict on contention")},
		DefaultMDE:          0.05,
		ConfoundControls:    standardConfounds,
		InteractionEligible: false,
	},
	severity.HeapAllocation: {
		HazardClass: severity.HeapAllocation,
		H0Template:  "Heap allocation on this hot path adds no measurable latency versus a pooled/stack allocation.",
		H1Template:  "Heap allocation on this hot path adds at least {mde} p99 latency versus a pooled/stack allocation.",
		Metric:      MetricSpec{Name: "op_latency", Unit: "ns", Percentile: "p99"},
		RequiredCounters: []PMUCounter{
			counter("instructions", Universal, "allocator call overhead shows up directly in instruction count"),
		},
		OptionalCounters:    []PMUCounter{counter("mem_load_retired.l1_miss", Universal, "heap metadata touches often miss cache on first use")},
		DefaultMDE:          0.05,
		ConfoundControls:    standardConfounds,
		InteractionEligible: false,
	},
	severity.LargeStackFrame: {
		HazardClass: severity.LargeStackFrame,
		H0Template:  "This function's {estimated_frame}-byte stack frame adds no measurable latency versus a frame under {threshold} bytes.",
		H1Template:  "This function's {estimated_frame}-byte stack frame adds at least {mde} latency from guard-page or cold-cache touches versus a frame under {threshold} bytes.",
		Metric:      MetricSpec{Name: "call_latency", Unit: "ns", Percentile: "p99"},
		RequiredCounters: []PMUCounter{
			counter("mem_load_retired.l1_miss", Universal, "a large frame touches more stack cache lines per call"),
		},
		OptionalCounters:    []PMUCounter{counter("dtlb_load_misses.stlb_hit", Extended, "frames spanning pages add TLB pressure")},
		DefaultMDE:          0.05,
		ConfoundControls:    standardConfounds,
		InteractionEligible: false,
	},
	severity.VirtualDispatch: {
		HazardClass: severity.VirtualDispatch,
		H0Template:  "Virtual dispatch on this hot path costs no measurable latency versus a direct or inlined call.",
		H1Template:  "Virtual dispatch on this hot path costs at least {mde} latency from indirect-branch misprediction versus a direct call.",
		Metric:      MetricSpec{Name: "call_latency", Unit: "ns", Percentile: "p99"},
		RequiredCounters: []PMUCounter{
			counter("br_misp_retired.indirect_call", Standard, "direct signature of mispredicted indirect (virtual) calls"),
		},
		OptionalCounters:    []PMUCounter{counter("icache_16b.ifdata_stall", Extended, "vtable/target fetch on a cold icache line")},
		DefaultMDE:          0.05,
		ConfoundControls:    standardConfounds,
		InteractionEligible: true,
	},
	severity.StdFunction: {
		HazardClass: severity.StdFunction,
		H0Template:  "Invoking this callable on the hot path costs no measurable latency versus a direct function call.",
		H1Template:  "Invoking this std::function on the hot path costs at least {mde} latency from its type-erased indirect call versus a direct call.",
		Metric:      MetricSpec{Name: "call_latency", Unit: "ns", Percentile: "p99"},
		RequiredCounters: []PMUCounter{
			counter("br_misp_retired.indirect_call", Standard, "type-erased callable dispatch is an indirect call at the machine level"),
		},
		OptionalCounters:    []PMUCounter{counter("mem_load_retired.l1_miss", Universal, "heap-allocated closures add a cold-cache dereference")},
		DefaultMDE:          0.05,
		ConfoundControls:    standardConfounds,
		InteractionEligible: true,
	},
	severity.GlobalMutableState: {
		HazardClass: severity.GlobalMutableState,
		H0Template:  "Concurrent access to this global shows no excess coherence traffic versus a thread-local equivalent.",
		H1Template:  "Concurrent access to this global costs at least {mde} additional p99 latency from coherence traffic versus a thread-local equivalent.",
		Metric:      MetricSpec{Name: "op_latency", Unit: "ns", Percentile: "p99"},
		RequiredCounters: []PMUCounter{
			counter("mem_load_l3_hit_retired.xsnp_hitm", Extended, "shared global state under write contention shows the same coherence signature as false sharing"),
		},
		OptionalCounters:    []PMUCounter{counter("mem_inst_retired.lock_loads", Standard, "atomic-backed globals add locked instructions per access")},
		DefaultMDE:          0.05,
		ConfoundControls:    standardConfounds,
		InteractionEligible: true,
	},
	severity.ContendedQueue: {
		HazardClass: severity.ContendedQueue,
		H0Template:  "Head/tail contention on this queue shows no throughput degradation as producer/consumer count increases.",
		H1Template:  "Head/tail contention on this queue costs at least {mde} throughput as producer/consumer count increases toward {target_count}.",
		Metric:      MetricSpec{Name: "op_throughput", Unit: "ops/s", Percentile: "mean"},
		RequiredCounters: []PMUCounter{
			counter("mem_load_l3_hit_retired.xsnp_hitm", Extended, "head and tail pointers on one line produce the false-sharing coherence signature under concurrent push/pop"),
		},
		OptionalCounters:    []PMUCounter{counter("mem_inst_retired.lock_loads", Standard, "CAS-based queue operations add locked instructions per call")},
		DefaultMDE:          0.05,
		ConfoundControls:    standardConfounds,
		InteractionEligible: true,
	},
	severity.DeepConditional: {
		HazardClass: severity.DeepConditional,
		H0Template:  "This {depth}-deep conditional tree shows no measurable branch-misprediction cost versus a flattened dispatch.",
		H1Template:  "This {depth}-deep conditional tree costs at least {mde} latency from branch misprediction versus a flattened dispatch table.",
		Metric:      MetricSpec{Name: "call_latency", Unit: "ns", Percentile: "p99"},
		RequiredCounters: []PMUCounter{
			counter("br_misp_retired.all_branches", Universal, "deep conditional trees accumulate mispredictions proportional to depth"),
		},
		OptionalCounters:    []PMUCounter{counter("idq.ms_uops", Extended, "microcode-assist overhead on certain branch-heavy dispatch patterns")},
		DefaultMDE:          0.05,
		ConfoundControls:    standardConfounds,
		InteractionEligible: true,
	},
	severity.NUMALocality: {
		HazardClass: severity.NUMALocality,
		H0Template:  "This structure's cross-NUMA-node access pattern shows no latency penalty versus node-local access.",
		H1Template:  "This structure costs at least {mde} additional p99 latency when accessed from a remote NUMA node versus the node it was allocated on.",
		Metric:      MetricSpec{Name: "access_latency", Unit: "ns", Percentile: "p99"},
		RequiredCounters: []PMUCounter{
			counter("offcore_response.all_data_rd.llc_miss.local_dram", Uncore, "baseline local-DRAM round-trip to compare remote access against"),
		},
		OptionalCounters:    []PMUCounter{counter("offcore_response.all_data_rd.llc_miss.remote_dram", Uncore, "direct evidence of a remote-node memory round-trip")},
		DefaultMDE:          0.05,
		ConfoundControls:    standardConfounds,
		InteractionEligible: true,
	},
	severity.CentralizedDispatch: {
		HazardClass: severity.CentralizedDispatch,
		H0Template:  "This dispatcher's {cases}-way fan-out shows no measurable bottleneck under concurrent call volume.",
		H1Template:  "This dispatcher costs at least {mde} additional p99 latency from serialized dispatch as concurrent call volume increases toward {target_count}.",
		Metric:      MetricSpec{Name: "call_latency", Unit: "ns", Percentile: "p99"},
		RequiredCounters: []PMUCounter{
			counter("br_misp_retired.indirect_call", Standard, "virtual or switch-based fan-out mispredicts under varied call sequences"),
		},
		OptionalCounters:    []PMUCounter{counter("resource_stalls.any", Extended, "serialized dispatch queues stall downstream execution")},
		DefaultMDE:          0.05,
		ConfoundControls:    standardConfounds,
		InteractionEligible: true,
	},
	severity.HazardAmplification: {
		HazardClass: severity.HazardAmplification,
		H0Template:  "This structure's co-occurring hazards show no compounding latency effect beyond their individual contributions.",
		H1Template:  "This structure's co-occurring hazards compound to at least {mde} additional p99.99 latency beyond the sum of their individual effects.",
		Metric:      MetricSpec{Name: "op_latency", Unit: "ns", Percentile: "p99.99"},
		RequiredCounters: []PMUCounter{
			counter("mem_load_l3_hit_retired.xsnp_hitm", Extended, "coherence-traffic signature shared by every contributing hazard"),
		},
		OptionalCounters:    []PMUCounter{counter("offcore_response.all_data_rd.llc_miss.remote_dram", Uncore, "confirms a NUMA-distance component to the compounding effect")},
		DefaultMDE:          0.05,
		ConfoundControls:    standardConfounds,
		InteractionEligible: true,
	},
}
