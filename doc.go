/*
go-drpai provides Go post processing for YOLO object detection models whose
head runs on the Renesas DRP-AI accelerator (RZ/V2H, RZ/V2L and related SoCs).

The accelerator emits, for each feature pyramid scale, a box regression tensor
in Distribution Focal Loss (DFL) form and a per class confidence tensor.  The
postprocess package decodes these into the single (4 + classes) x grid points
detection tensor consumed by a thresholding and NMS stage.

This root package holds the containers used to hand raw accelerator output
buffers (FP32, FP16 or affine quantized INT8) to the post processor.

See example code and usage in the example subdirectory.
*/
package drpai
